package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/internal/platform/wallet"
)

// KindTotals aggregates balances and expense flow for one wallet kind.
type KindTotals struct {
	Opening decimal.Decimal `json:"opening"`
	Closing decimal.Decimal `json:"closing"`
	Expense decimal.Decimal `json:"expense"`
}

// SummaryReport is the per-month dashboard view: balances aggregated by
// wallet kind plus overall totals across the user's wallets.
type SummaryReport struct {
	Month        Month           `json:"month"`
	Cash         KindTotals      `json:"cash"`
	Bank         KindTotals      `json:"bank"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// Summary resolves each of the user's wallet snapshots for the month and
// aggregates them by wallet kind. It is a pure read: wallets without a
// snapshot for the month contribute zeros, nothing is created.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, month Month) (*SummaryReport, error) {
	wallets, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	report := &SummaryReport{
		Month:        month,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		TotalBalance: decimal.Zero,
	}

	for _, w := range wallets {
		snap, err := s.store.GetSnapshot(ctx, w.ID, month)
		if err != nil {
			if errors.Is(err, ErrSnapshotNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve snapshot for wallet %s: %w", w.ID, err)
		}

		switch w.Kind {
		case wallet.KindCash:
			report.Cash.Opening = report.Cash.Opening.Add(snap.Opening)
			report.Cash.Closing = report.Cash.Closing.Add(snap.Closing)
			report.Cash.Expense = report.Cash.Expense.Add(snap.Expense)
		case wallet.KindBank:
			report.Bank.Opening = report.Bank.Opening.Add(snap.Opening)
			report.Bank.Closing = report.Bank.Closing.Add(snap.Closing)
			report.Bank.Expense = report.Bank.Expense.Add(snap.Expense)
		default:
			return nil, fmt.Errorf("unknown wallet kind %q for wallet %s", w.Kind, w.ID)
		}

		report.TotalIncome = report.TotalIncome.Add(snap.Income)
		report.TotalExpense = report.TotalExpense.Add(snap.Expense)
		report.TotalBalance = report.TotalBalance.Add(snap.Closing)
	}

	return report, nil
}
