package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/cashtrack/internal/ledger"
)

type stubRepo struct {
	categories []CategoryTotal
	monthly    []MonthTotal

	gotFrom time.Time
	gotTo   time.Time
	gotYear int
}

func (s *stubRepo) ExpensesByCategory(_ context.Context, _ uuid.UUID, from, to time.Time) ([]CategoryTotal, error) {
	s.gotFrom = from
	s.gotTo = to
	return s.categories, nil
}

func (s *stubRepo) MonthlyTotals(_ context.Context, _ uuid.UUID, year int) ([]MonthTotal, error) {
	s.gotYear = year
	return s.monthly, nil
}

func TestService_ExpensesByCategory(t *testing.T) {
	repo := &stubRepo{categories: []CategoryTotal{
		{Category: "food", Total: decimal.NewFromInt(300)},
		{Category: "transport", Total: decimal.NewFromInt(120)},
	}}
	svc := NewService(repo)

	month := ledger.NewMonth(2026, time.March)
	got, err := svc.ExpensesByCategory(context.Background(), uuid.New(), month)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Query window is the half-open calendar month
	assert.Equal(t, month.Start(), repo.gotFrom)
	assert.Equal(t, month.NextStart(), repo.gotTo)
}

func TestService_MonthlyTrend_ZeroFillsQuietMonths(t *testing.T) {
	mar := ledger.NewMonth(2026, time.March)
	nov := ledger.NewMonth(2026, time.November)
	repo := &stubRepo{monthly: []MonthTotal{
		{Month: mar, Income: decimal.NewFromInt(1000), Expense: decimal.NewFromInt(400)},
		{Month: nov, Income: decimal.NewFromInt(500), Expense: decimal.Zero},
	}}
	svc := NewService(repo)

	series, err := svc.MonthlyTrend(context.Background(), uuid.New(), 2026)
	require.NoError(t, err)
	require.Len(t, series, 12)
	assert.Equal(t, 2026, repo.gotYear)

	for i, entry := range series {
		assert.Equal(t, ledger.NewMonth(2026, time.Month(i+1)), entry.Month)
	}

	assert.True(t, series[2].Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, series[10].Income.Equal(decimal.NewFromInt(500)))

	// Quiet months report explicit zeros rather than being skipped
	assert.True(t, series[0].Income.IsZero())
	assert.True(t, series[0].Expense.IsZero())
	assert.True(t, series[11].Income.IsZero())
}
