package stats

import (
	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/internal/ledger"
)

// CategoryTotal is the summed expense for one category within a month.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthTotal is the income/expense pair for one month of a trend series.
type MonthTotal struct {
	Month   ledger.Month    `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}
