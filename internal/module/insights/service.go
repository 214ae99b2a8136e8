package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/internal/ledger"
)

// Severity grades an insight for the dashboard.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityCaution Severity = "caution"
	SeverityWarning Severity = "warning"
)

// Insight is one human-readable observation about a monthly summary.
type Insight struct {
	Type    Severity `json:"type"`
	Message string   `json:"message"`
}

var hundred = decimal.NewFromInt(100)

// Service derives spending-pattern insights from monthly summary reports.
// It holds no state and performs no I/O.
type Service struct{}

// NewService creates a new insights service
func NewService() *Service {
	return &Service{}
}

// Analyze inspects a monthly summary and returns the applicable insights:
// the burn-rate health of spending against income and the split of spending
// between bank and cash wallets.
func (s *Service) Analyze(report *ledger.SummaryReport) []Insight {
	insights := []Insight{}

	// Burn rate: share of income consumed by expenses.
	switch {
	case report.TotalIncome.IsPositive():
		burnRate := report.TotalExpense.Div(report.TotalIncome).Mul(hundred)
		switch {
		case burnRate.GreaterThan(hundred):
			insights = append(insights, Insight{
				Type:    SeverityWarning,
				Message: fmt.Sprintf("You are spending %s%% of your income! (Deficit)", burnRate.StringFixed(1)),
			})
		case burnRate.GreaterThan(decimal.NewFromInt(80)):
			insights = append(insights, Insight{
				Type:    SeverityCaution,
				Message: fmt.Sprintf("High burn rate: %s%% of income used.", burnRate.StringFixed(1)),
			})
		default:
			insights = append(insights, Insight{
				Type:    SeveritySuccess,
				Message: fmt.Sprintf("Healthy burn rate: %s%%.", burnRate.StringFixed(1)),
			})
		}
	case report.TotalExpense.IsPositive():
		insights = append(insights, Insight{
			Type:    SeverityWarning,
			Message: "Expenses detected with zero income.",
		})
	}

	// Bank dependency: share of expenses flowing through bank wallets.
	if report.TotalExpense.IsPositive() {
		bankShare := report.Bank.Expense.Div(report.TotalExpense).Mul(hundred)
		switch {
		case bankShare.GreaterThan(decimal.NewFromInt(80)):
			insights = append(insights, Insight{
				Type:    SeverityInfo,
				Message: fmt.Sprintf("High bank dependency: %s%% of expenses via bank.", bankShare.StringFixed(1)),
			})
		case bankShare.LessThan(decimal.NewFromInt(20)):
			insights = append(insights, Insight{
				Type:    SeverityInfo,
				Message: "Heavy cash usage detected.",
			})
		}
	}

	return insights
}
