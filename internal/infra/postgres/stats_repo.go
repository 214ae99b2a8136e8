package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/module/stats"
)

// StatsRepository implements the stats read queries using PostgreSQL
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new PostgreSQL stats repository
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// ExpensesByCategory sums expense entries per category for one user over the
// half-open date range [from, to). Entries without a category fall under
// "uncategorized".
func (r *StatsRepository) ExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]stats.CategoryTotal, error) {
	query := `
		SELECT COALESCE(NULLIF(e.category, ''), 'uncategorized'), SUM(e.amount)::text
		FROM journal_entries e
		JOIN wallets w ON w.id = e.wallet_id
		WHERE w.user_id = $1
		  AND e.kind = 'expense'
		  AND e.entry_date >= $2 AND e.entry_date < $3
		GROUP BY 1
		ORDER BY SUM(e.amount) DESC, 1
	`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by category: %w", err)
	}
	defer rows.Close()

	var totals []stats.CategoryTotal
	for rows.Next() {
		var (
			t   stats.CategoryTotal
			sum string
		)
		if err := rows.Scan(&t.Category, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		if t.Total, err = decimal.NewFromString(sum); err != nil {
			return nil, fmt.Errorf("invalid category total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}

	return totals, nil
}

// MonthlyTotals returns per-month income and expense sums across all of the
// user's wallets for one calendar year.
func (r *StatsRepository) MonthlyTotals(ctx context.Context, userID uuid.UUID, year int) ([]stats.MonthTotal, error) {
	query := `
		SELECT s.month, SUM(s.total_income)::text, SUM(s.total_expense)::text
		FROM monthly_snapshots s
		JOIN wallets w ON w.id = s.wallet_id
		WHERE w.user_id = $1 AND s.month LIKE $2
		GROUP BY s.month
		ORDER BY s.month
	`

	rows, err := r.pool.Query(ctx, query, userID, fmt.Sprintf("%04d-%%", year))
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []stats.MonthTotal
	for rows.Next() {
		var (
			t        stats.MonthTotal
			monthStr string
			income   string
			expense  string
		)
		if err := rows.Scan(&monthStr, &income, &expense); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		if t.Month, err = ledger.ParseMonth(monthStr); err != nil {
			return nil, fmt.Errorf("invalid month in totals row: %w", err)
		}
		if t.Income, err = decimal.NewFromString(income); err != nil {
			return nil, fmt.Errorf("invalid income total: %w", err)
		}
		if t.Expense, err = decimal.NewFromString(expense); err != nil {
			return nil, fmt.Errorf("invalid expense total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly totals: %w", err)
	}

	return totals, nil
}
