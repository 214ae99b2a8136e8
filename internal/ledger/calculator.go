package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Recompute refreshes a snapshot's totals from the journal and re-derives
// its closing balance from the current opening balance. It is idempotent:
// with no new journal entries a second run produces identical values.
func (s *Service) Recompute(ctx context.Context, walletID uuid.UUID, month Month) (*Snapshot, error) {
	snap, err := s.store.GetSnapshot(ctx, walletID, month)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// recompute sums journal entries in the month window into the snapshot and
// persists the result. Closed snapshots are frozen; touching one is a logic
// error surfaced to the caller, never silently applied.
func (s *Service) recompute(ctx context.Context, snap *Snapshot) error {
	if snap.Closed {
		return fmt.Errorf("%w: %s", ErrMonthClosed, snap.Month)
	}

	totals, err := s.store.SumMonth(ctx, snap.WalletID, snap.Month)
	if err != nil {
		return fmt.Errorf("failed to sum journal for %s: %w", snap.Month, err)
	}

	snap.applyTotals(totals)

	if err := s.store.UpdateSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to update snapshot for %s: %w", snap.Month, err)
	}
	return nil
}
