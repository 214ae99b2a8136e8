package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/pkg/logger"
)

// Service is the monthly ledger engine. It owns the mutation protocol:
// every income, expense, or transfer runs its overdraft check, journal
// append, and snapshot recompute as one atomic unit under a per-wallet
// lock, then hands a forward cascade to the asynchronous queue.
type Service struct {
	store    Store
	wallets  WalletDirectory
	cascades CascadeQueue
	log      *logger.Logger
}

// NewService creates a new ledger service
func NewService(store Store, wallets WalletDirectory, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		wallets: wallets,
		log:     log.WithField("component", "ledger"),
	}
}

// SetCascadeQueue wires the asynchronous cascade queue. Without a queue the
// synchronous recompute still runs; only forward propagation is skipped.
func (s *Service) SetCascadeQueue(q CascadeQueue) {
	s.cascades = q
}

// IncomeInput carries a validated income request.
type IncomeInput struct {
	WalletID uuid.UUID
	UserID   uuid.UUID
	Amount   decimal.Decimal
	Date     time.Time
	Category string
	Note     string
}

// ExpenseInput carries a validated expense request.
type ExpenseInput struct {
	WalletID uuid.UUID
	UserID   uuid.UUID
	Amount   decimal.Decimal
	Date     time.Time
	Category string
	Note     string
}

// TransferInput carries a validated wallet-to-wallet transfer request.
type TransferInput struct {
	SourceWalletID uuid.UUID
	TargetWalletID uuid.UUID
	UserID         uuid.UUID
	Amount         decimal.Decimal
	Date           time.Time
	Note           string
}

// AddIncome appends an income entry, recomputes the wallet's snapshot for
// the entry month synchronously, and schedules a forward cascade.
func (s *Service) AddIncome(ctx context.Context, in IncomeInput) (*Entry, error) {
	if err := s.ownedWallet(ctx, in.WalletID, in.UserID); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:        uuid.New(),
		Kind:      EntryIncome,
		WalletID:  &in.WalletID,
		Amount:    in.Amount,
		Date:      in.Date,
		Category:  in.Category,
		Note:      in.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	month := entry.Month()
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.store.LockWallet(txCtx, in.WalletID); err != nil {
			return fmt.Errorf("failed to lock wallet: %w", err)
		}

		snap, err := s.ensure(txCtx, in.WalletID, month)
		if err != nil {
			return err
		}
		if snap.Closed {
			return fmt.Errorf("%w: %s", ErrMonthClosed, month)
		}

		if err := s.store.AppendEntry(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}

		return s.recompute(txCtx, snap)
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCascade(in.WalletID, month)
	return entry, nil
}

// AddExpense behaves like AddIncome but is gated by the overdraft check:
// when the amount exceeds the month's current closing balance the request
// fails with ErrInsufficientFunds and nothing is written.
func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (*Entry, error) {
	if err := s.ownedWallet(ctx, in.WalletID, in.UserID); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:        uuid.New(),
		Kind:      EntryExpense,
		WalletID:  &in.WalletID,
		Amount:    in.Amount,
		Date:      in.Date,
		Category:  in.Category,
		Note:      in.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	month := entry.Month()
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.store.LockWallet(txCtx, in.WalletID); err != nil {
			return fmt.Errorf("failed to lock wallet: %w", err)
		}

		snap, err := s.ensure(txCtx, in.WalletID, month)
		if err != nil {
			return err
		}
		if snap.Closed {
			return fmt.Errorf("%w: %s", ErrMonthClosed, month)
		}

		if in.Amount.GreaterThan(snap.Closing) {
			return ErrInsufficientFunds
		}

		if err := s.store.AppendEntry(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}

		return s.recompute(txCtx, snap)
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCascade(in.WalletID, month)
	return entry, nil
}

// AddTransfer appends one transfer entry referencing both wallets and
// recomputes the source and target snapshots in the same transaction, so
// the debit and credit can never land separately. The overdraft gate applies
// to the source wallet only.
func (s *Service) AddTransfer(ctx context.Context, in TransferInput) (*Entry, error) {
	if err := s.ownedWallet(ctx, in.SourceWalletID, in.UserID); err != nil {
		return nil, err
	}
	if err := s.ownedWallet(ctx, in.TargetWalletID, in.UserID); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             uuid.New(),
		Kind:           EntryTransfer,
		SourceWalletID: &in.SourceWalletID,
		TargetWalletID: &in.TargetWalletID,
		Amount:         in.Amount,
		Date:           in.Date,
		Note:           in.Note,
		CreatedAt:      time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	month := entry.Month()
	err := s.inTx(ctx, func(txCtx context.Context) error {
		// Lock both wallets in a deterministic order to avoid deadlock
		// between two opposite-direction transfers.
		for _, id := range lockOrder(in.SourceWalletID, in.TargetWalletID) {
			if err := s.store.LockWallet(txCtx, id); err != nil {
				return fmt.Errorf("failed to lock wallet: %w", err)
			}
		}

		source, err := s.ensure(txCtx, in.SourceWalletID, month)
		if err != nil {
			return err
		}
		if source.Closed {
			return fmt.Errorf("%w: %s", ErrMonthClosed, month)
		}

		if in.Amount.GreaterThan(source.Closing) {
			return ErrInsufficientFunds
		}

		target, err := s.ensure(txCtx, in.TargetWalletID, month)
		if err != nil {
			return err
		}
		if target.Closed {
			return fmt.Errorf("%w: %s", ErrMonthClosed, month)
		}

		if err := s.store.AppendEntry(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}

		if err := s.recompute(txCtx, source); err != nil {
			return err
		}
		return s.recompute(txCtx, target)
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCascade(in.SourceWalletID, month)
	s.scheduleCascade(in.TargetWalletID, month)
	return entry, nil
}

// Recalculate schedules a cascade for a wallet starting at the given month.
// The wallet must exist and belong to the user.
func (s *Service) Recalculate(ctx context.Context, walletID, userID uuid.UUID, start Month) error {
	if err := s.ownedWallet(ctx, walletID, userID); err != nil {
		return err
	}
	s.scheduleCascade(walletID, start)
	return nil
}

// ownedWallet resolves a wallet and checks ownership. Lookup failures map to
// ErrWalletNotFound so callers see one validation error before any mutation.
func (s *Service) ownedWallet(ctx context.Context, walletID, userID uuid.UUID) error {
	w, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return ErrWalletNotFound
	}
	if userID != uuid.Nil && w.UserID != userID {
		return ErrWalletNotFound
	}
	return nil
}

// inTx runs fn inside a store transaction with rollback on error.
func (s *Service) inTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	txCtx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = s.store.RollbackTx(txCtx)
		}
	}()

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := s.store.CommitTx(txCtx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (s *Service) scheduleCascade(walletID uuid.UUID, start Month) {
	if s.cascades == nil {
		return
	}
	s.cascades.Schedule(walletID, start)
}

// lockOrder returns the two wallet IDs in a stable global order.
func lockOrder(a, b uuid.UUID) [2]uuid.UUID {
	if strings.Compare(a.String(), b.String()) <= 0 {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}
