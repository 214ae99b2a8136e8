package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/platform/wallet"
)

// Store defines the persistence interface for the journal and the snapshot
// chain. The journal is append-only: no update or delete is exposed for
// committed entries.
type Store interface {
	// Journal operations
	AppendEntry(ctx context.Context, e *Entry) error
	SumMonth(ctx context.Context, walletID uuid.UUID, month Month) (MonthTotals, error)

	// Snapshot operations
	GetSnapshot(ctx context.Context, walletID uuid.UUID, month Month) (*Snapshot, error)
	GetSnapshotForUpdate(ctx context.Context, walletID uuid.UUID, month Month) (*Snapshot, error)
	CreateSnapshot(ctx context.Context, s *Snapshot) error
	UpdateSnapshot(ctx context.Context, s *Snapshot) error
	ListOpenSnapshots(ctx context.Context, month Month) ([]*Snapshot, error)

	// Transaction management. BeginTx returns a context carrying the database
	// transaction; all Store calls made with that context run inside it.
	BeginTx(ctx context.Context) (context.Context, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error

	// LockWallet serializes mutations per wallet. Requires an active
	// transaction context; the lock is released on commit or rollback.
	LockWallet(ctx context.Context, walletID uuid.UUID) error
}

// WalletDirectory is the read-side view of the wallet platform the engine
// needs: existence/ownership checks and kind tags for summary aggregation.
type WalletDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error)
}

// CascadeQueue accepts forward-recalculation jobs for asynchronous execution.
// Implementations must coalesce duplicate (wallet, startMonth) requests.
type CascadeQueue interface {
	Schedule(walletID uuid.UUID, start Month)
}
