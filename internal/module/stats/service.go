package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/internal/ledger"
)

// Service answers aggregate reporting questions over the journal and the
// snapshot chain. It is read-only.
type Service struct {
	repo Repository
}

// NewService creates a new stats service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ExpensesByCategory returns per-category expense totals for one month,
// largest first.
func (s *Service) ExpensesByCategory(ctx context.Context, userID uuid.UUID, month ledger.Month) ([]CategoryTotal, error) {
	totals, err := s.repo.ExpensesByCategory(ctx, userID, month.Start(), month.NextStart())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses by category: %w", err)
	}

	return totals, nil
}

// MonthlyTrend returns the income/expense series for one calendar year.
// Every month of the year appears exactly once; months without activity are
// zero-filled.
func (s *Service) MonthlyTrend(ctx context.Context, userID uuid.UUID, year int) ([]MonthTotal, error) {
	totals, err := s.repo.MonthlyTotals(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly trend: %w", err)
	}

	byMonth := make(map[ledger.Month]MonthTotal, len(totals))
	for _, t := range totals {
		byMonth[t.Month] = t
	}

	series := make([]MonthTotal, 0, 12)
	for mon := time.January; mon <= time.December; mon++ {
		m := ledger.NewMonth(year, mon)
		if t, ok := byMonth[m]; ok {
			series = append(series, t)
			continue
		}
		series = append(series, MonthTotal{
			Month:   m,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		})
	}

	return series, nil
}
