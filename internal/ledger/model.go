package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind discriminates journal entry variants.
type EntryKind string

const (
	EntryIncome   EntryKind = "income"
	EntryExpense  EntryKind = "expense"
	EntryTransfer EntryKind = "transfer"
)

// IsValid checks if the entry kind is one of the known variants.
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryIncome, EntryExpense, EntryTransfer:
		return true
	}
	return false
}

// Entry is one immutable journal record. Income and expense entries reference
// a single wallet; a transfer is one entity referencing both legs so the
// source debit and target credit can never diverge.
type Entry struct {
	ID             uuid.UUID       `json:"id"`
	Kind           EntryKind       `json:"kind"`
	WalletID       *uuid.UUID      `json:"wallet_id,omitempty"`
	SourceWalletID *uuid.UUID      `json:"source_wallet_id,omitempty"`
	TargetWalletID *uuid.UUID      `json:"target_wallet_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	Category       string          `json:"category,omitempty"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Validate checks structural invariants before the entry enters the journal.
func (e *Entry) Validate() error {
	if !e.Kind.IsValid() {
		return ErrInvalidEntryKind
	}
	if e.Amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}

	switch e.Kind {
	case EntryTransfer:
		if e.SourceWalletID == nil || e.TargetWalletID == nil {
			return ErrMissingTransferLeg
		}
		if *e.SourceWalletID == *e.TargetWalletID {
			return ErrSameWalletTransfer
		}
	default:
		if e.WalletID == nil {
			return ErrMissingWallet
		}
	}

	return nil
}

// Month returns the snapshot month the entry belongs to.
func (e *Entry) Month() Month {
	return MonthOf(e.Date)
}

// MonthTotals are the journal aggregates for one wallet in one month window.
type MonthTotals struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	TransfersIn  decimal.Decimal
	TransfersOut decimal.Decimal
}

// Snapshot is the computed monthly balance for one wallet, keyed uniquely by
// (WalletID, Month). Once Closed flips to true the snapshot is frozen.
type Snapshot struct {
	WalletID     uuid.UUID       `json:"wallet_id"`
	Month        Month           `json:"month"`
	Opening      decimal.Decimal `json:"opening_balance"`
	Income       decimal.Decimal `json:"total_income"`
	Expense      decimal.Decimal `json:"total_expense"`
	TransfersIn  decimal.Decimal `json:"total_transfers_in"`
	TransfersOut decimal.Decimal `json:"total_transfers_out"`
	Closing      decimal.Decimal `json:"closing_balance"`
	Closed       bool            `json:"is_closed"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// applyTotals rewrites the snapshot totals and re-derives the closing balance
// from the balance identity. The opening balance is left untouched.
func (s *Snapshot) applyTotals(t MonthTotals) {
	s.Income = t.Income
	s.Expense = t.Expense
	s.TransfersIn = t.TransfersIn
	s.TransfersOut = t.TransfersOut
	s.Closing = s.Opening.
		Add(t.Income).
		Sub(t.Expense).
		Add(t.TransfersIn).
		Sub(t.TransfersOut)
}

// Balanced reports whether the closing balance satisfies the identity
// closing = opening + income - expense + in - out.
func (s *Snapshot) Balanced() bool {
	want := s.Opening.
		Add(s.Income).
		Sub(s.Expense).
		Add(s.TransfersIn).
		Sub(s.TransfersOut)
	return s.Closing.Equal(want)
}
