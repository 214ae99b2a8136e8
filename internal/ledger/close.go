package ledger

import (
	"context"
	"fmt"
)

// CloseMonth freezes every open snapshot of the given month across all
// wallets: totals are recomputed one final time, the snapshot is marked
// closed (a one-way transition), and the following month's snapshot is
// eagerly created seeded from the frozen closing balance. Every wallet
// therefore has an open snapshot ready before any next-month activity.
func (s *Service) CloseMonth(ctx context.Context, month Month) error {
	return s.inTx(ctx, func(txCtx context.Context) error {
		snaps, err := s.store.ListOpenSnapshots(txCtx, month)
		if err != nil {
			return fmt.Errorf("failed to list open snapshots for %s: %w", month, err)
		}

		for _, snap := range snaps {
			if err := s.store.LockWallet(txCtx, snap.WalletID); err != nil {
				return fmt.Errorf("failed to lock wallet: %w", err)
			}

			if err := s.recompute(txCtx, snap); err != nil {
				return err
			}

			snap.Closed = true
			if err := s.store.UpdateSnapshot(txCtx, snap); err != nil {
				return fmt.Errorf("failed to close snapshot for %s: %w", month, err)
			}

			if _, err := s.ensure(txCtx, snap.WalletID, month.Next()); err != nil {
				return fmt.Errorf("failed to seed next month for wallet %s: %w", snap.WalletID, err)
			}
		}

		s.log.Info("month closed", "month", month.String(), "snapshots", len(snaps))
		return nil
	})
}
