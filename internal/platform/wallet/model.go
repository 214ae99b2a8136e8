package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags a wallet as physical cash or a bank account. It is a closed enum
// so summary aggregation can switch over it exhaustively.
type Kind string

const (
	KindCash Kind = "cash"
	KindBank Kind = "bank"
)

// IsValid checks if the kind is one of the known tags.
func (k Kind) IsValid() bool {
	switch k {
	case KindCash, KindBank:
		return true
	}
	return false
}

// Wallet is a named balance-holding account owned by one user. Monthly
// snapshots and journal entries reference it by ID.
type Wallet struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Kind      Kind      `json:"kind" db:"kind"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates wallet fields for creation.
func (w *Wallet) ValidateCreate() error {
	if w.UserID == uuid.Nil {
		return ErrInvalidUserID
	}

	if w.Name == "" {
		return ErrMissingWalletName
	}

	if len(w.Name) > 100 {
		return ErrWalletNameTooLong
	}

	if !w.Kind.IsValid() {
		return ErrInvalidKind
	}

	return nil
}
