package ledger

import (
	"fmt"
	"strconv"
	"time"
)

// Month identifies one calendar month in the snapshot chain.
// The zero value is invalid and reported by IsZero.
type Month struct {
	year int
	mon  time.Month
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{year: t.Year(), mon: t.Month()}, nil
}

// MonthOf returns the month a date belongs to.
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), mon: t.Month()}
}

// CurrentMonth returns the month of the current wall-clock time in UTC.
func CurrentMonth() Month {
	return MonthOf(time.Now().UTC())
}

// NewMonth builds a month from its parts. Intended for tests and trend fills.
func NewMonth(year int, mon time.Month) Month {
	return Month{year: year, mon: mon}
}

// Prev returns the immediately preceding month.
func (m Month) Prev() Month {
	t := m.Start().AddDate(0, -1, 0)
	return MonthOf(t)
}

// Next returns the immediately following month.
func (m Month) Next() Month {
	return MonthOf(m.NextStart())
}

// Start returns the first instant of the month in UTC.
func (m Month) Start() time.Time {
	return time.Date(m.year, m.mon, 1, 0, 0, 0, 0, time.UTC)
}

// NextStart returns the first instant of the following month in UTC.
// Journal queries use the half-open range [Start, NextStart).
func (m Month) NextStart() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.year != other.year {
		return m.year < other.year
	}
	return m.mon < other.mon
}

// Year returns the calendar year.
func (m Month) Year() int {
	return m.year
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool {
	return m.year == 0
}

// String formats the month as its "YYYY-MM" key.
func (m Month) String() string {
	return m.Start().Format("2006-01")
}

// MarshalJSON encodes the month as its "YYYY-MM" key.
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON decodes a "YYYY-MM" key.
func (m *Month) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMonth, data)
	}

	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed

	return nil
}
