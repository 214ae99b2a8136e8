package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid month", input: "2026-03", want: "2026-03"},
		{name: "single digit month padded", input: "2026-09", want: "2026-09"},
		{name: "missing month part", input: "2026", wantErr: true},
		{name: "month out of range", input: "2026-13", wantErr: true},
		{name: "full date rejected", input: "2026-03-15", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "garbage", input: "march", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMonth(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestMonth_PrevNext(t *testing.T) {
	m := NewMonth(2026, time.March)
	assert.Equal(t, "2026-02", m.Prev().String())
	assert.Equal(t, "2026-04", m.Next().String())

	// Year boundaries
	jan := NewMonth(2026, time.January)
	assert.Equal(t, "2025-12", jan.Prev().String())

	dec := NewMonth(2025, time.December)
	assert.Equal(t, "2026-01", dec.Next().String())
}

func TestMonth_Window(t *testing.T) {
	m := NewMonth(2026, time.February)

	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), m.Start())
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), m.NextStart())

	// A date on the last instant of the month still belongs to it
	last := time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, m, MonthOf(last))
}

func TestMonth_Before(t *testing.T) {
	a := NewMonth(2025, time.December)
	b := NewMonth(2026, time.January)

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestMonth_JSON(t *testing.T) {
	m := NewMonth(2026, time.July)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"2026-07"`, string(data))

	var decoded Month
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"not-a-month"`), &decoded))
}

func TestMonthOf_UsesCalendarMonth(t *testing.T) {
	d := time.Date(2026, time.August, 31, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08", MonthOf(d).String())
}
