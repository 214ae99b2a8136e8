package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resolve returns the snapshot for (wallet, month) without side effects.
// Absent snapshots yield ErrSnapshotNotFound; read-only callers decide for
// themselves whether to fall back to zeros or call Ensure.
func (s *Service) Resolve(ctx context.Context, walletID uuid.UUID, month Month) (*Snapshot, error) {
	return s.store.GetSnapshot(ctx, walletID, month)
}

// Ensure returns the snapshot for (wallet, month), creating it if absent.
// A new snapshot opens with the immediately preceding month's closing
// balance, or zero when no preceding snapshot exists. The lookback is
// exactly one month: a wallet silent for several months restarts its chain
// at zero rather than rolling up through the gap.
func (s *Service) Ensure(ctx context.Context, walletID uuid.UUID, month Month) (*Snapshot, error) {
	if err := s.ownedWallet(ctx, walletID, uuid.Nil); err != nil {
		return nil, err
	}
	return s.ensure(ctx, walletID, month)
}

func (s *Service) ensure(ctx context.Context, walletID uuid.UUID, month Month) (*Snapshot, error) {
	snap, err := s.store.GetSnapshot(ctx, walletID, month)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrSnapshotNotFound) {
		return nil, fmt.Errorf("failed to resolve snapshot for %s: %w", month, err)
	}

	opening := decimal.Zero
	prev, err := s.store.GetSnapshot(ctx, walletID, month.Prev())
	switch {
	case err == nil:
		opening = prev.Closing
	case errors.Is(err, ErrSnapshotNotFound):
		// Fresh chain: no preceding snapshot, opening stays zero.
	default:
		return nil, fmt.Errorf("failed to resolve previous snapshot for %s: %w", month, err)
	}

	now := time.Now().UTC()
	snap = &Snapshot{
		WalletID:     walletID,
		Month:        month,
		Opening:      opening,
		Income:       decimal.Zero,
		Expense:      decimal.Zero,
		TransfersIn:  decimal.Zero,
		TransfersOut: decimal.Zero,
		Closing:      opening,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Creation races on the (wallet, month) unique key resolve in the store;
	// re-read so every caller sees the row that actually won.
	if err := s.store.CreateSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to create snapshot for %s: %w", month, err)
	}
	return s.store.GetSnapshot(ctx, walletID, month)
}
