package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cascadeMonthLimit bounds a chain walk to roughly ten years; exceeding it
// signals a corrupted or pathologically long chain.
const cascadeMonthLimit = 120

// Cascade restores chain continuity after a journal mutation affecting
// startMonth. It ensures the starting snapshot, then walks forward through
// snapshots that already exist, re-chaining each opening balance from the
// previous month's updated closing and recomputing totals. It never
// manufactures snapshots beyond the starting one, so a gap halts
// propagation there. The whole walk runs in one transaction under the
// wallet lock, making concurrent cascades for the same wallet serialize
// instead of interleaving; the operation is idempotent.
func (s *Service) Cascade(ctx context.Context, walletID uuid.UUID, start Month) error {
	return s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.store.LockWallet(txCtx, walletID); err != nil {
			return fmt.Errorf("failed to lock wallet: %w", err)
		}

		current := start
		for i := 0; ; i++ {
			if i >= cascadeMonthLimit {
				return fmt.Errorf("%w: started at %s", ErrCascadeLimitExceeded, start)
			}

			snap, err := s.ensure(txCtx, walletID, current)
			if err != nil {
				return err
			}
			if snap.Closed {
				return fmt.Errorf("%w: cascade reached %s", ErrMonthClosed, current)
			}

			if i > 0 {
				if err := s.rechainOpening(txCtx, snap); err != nil {
					return err
				}
			}

			if err := s.recompute(txCtx, snap); err != nil {
				return err
			}

			next := current.Next()
			if _, err := s.store.GetSnapshot(txCtx, walletID, next); err != nil {
				if errors.Is(err, ErrSnapshotNotFound) {
					return nil
				}
				return fmt.Errorf("failed to probe snapshot for %s: %w", next, err)
			}
			current = next
		}
	})
}

// rechainOpening resets a snapshot's opening balance from the previous
// month's closing, or zero when the previous snapshot is missing.
func (s *Service) rechainOpening(ctx context.Context, snap *Snapshot) error {
	prev, err := s.store.GetSnapshot(ctx, snap.WalletID, snap.Month.Prev())
	switch {
	case err == nil:
		snap.Opening = prev.Closing
	case errors.Is(err, ErrSnapshotNotFound):
		snap.Opening = decimal.Zero
	default:
		return fmt.Errorf("failed to resolve previous snapshot for %s: %w", snap.Month, err)
	}
	return nil
}
