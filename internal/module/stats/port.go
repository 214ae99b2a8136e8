package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the read-side queries backing the stats endpoints.
type Repository interface {
	// ExpensesByCategory sums expense entries per category for one user over
	// the half-open date range [from, to).
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CategoryTotal, error)

	// MonthlyTotals returns per-month income and expense sums across all of
	// the user's wallets for one calendar year. Months with no snapshot are
	// simply absent.
	MonthlyTotals(ctx context.Context, userID uuid.UUID, year int) ([]MonthTotal, error)
}
