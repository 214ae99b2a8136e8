package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkotenko/cashtrack/internal/ledger"
)

// LedgerRepository implements ledger.Store using PostgreSQL. Journal entries
// are append-only rows; snapshots are keyed by (wallet_id, month).
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// AppendEntry inserts a journal entry. Entries are immutable once written.
func (r *LedgerRepository) AppendEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO journal_entries (id, kind, wallet_id, source_wallet_id, target_wallet_id,
			amount, entry_date, category, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	q := r.getQueryer(ctx)
	_, err := q.Exec(ctx, query,
		e.ID,
		string(e.Kind),
		e.WalletID,
		e.SourceWalletID,
		e.TargetWalletID,
		e.Amount.String(),
		e.Date,
		e.Category,
		e.Note,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	return nil
}

// SumMonth aggregates the journal for one wallet over one calendar month.
// Transfers count against the source wallet as outflow and toward the target
// wallet as inflow.
func (r *LedgerRepository) SumMonth(ctx context.Context, walletID uuid.UUID, month ledger.Month) (ledger.MonthTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'income'   AND wallet_id = $1), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'  AND wallet_id = $1), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'transfer' AND target_wallet_id = $1), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE kind = 'transfer' AND source_wallet_id = $1), 0)::text
		FROM journal_entries
		WHERE entry_date >= $2 AND entry_date < $3
		  AND (wallet_id = $1 OR source_wallet_id = $1 OR target_wallet_id = $1)
	`

	var income, expense, in, out string

	q := r.getQueryer(ctx)
	err := q.QueryRow(ctx, query, walletID, month.Start(), month.NextStart()).
		Scan(&income, &expense, &in, &out)
	if err != nil {
		return ledger.MonthTotals{}, fmt.Errorf("failed to sum journal for month %s: %w", month, err)
	}

	totals := ledger.MonthTotals{}
	if totals.Income, err = decimal.NewFromString(income); err != nil {
		return ledger.MonthTotals{}, fmt.Errorf("failed to parse income total: %w", err)
	}
	if totals.Expense, err = decimal.NewFromString(expense); err != nil {
		return ledger.MonthTotals{}, fmt.Errorf("failed to parse expense total: %w", err)
	}
	if totals.TransfersIn, err = decimal.NewFromString(in); err != nil {
		return ledger.MonthTotals{}, fmt.Errorf("failed to parse transfers-in total: %w", err)
	}
	if totals.TransfersOut, err = decimal.NewFromString(out); err != nil {
		return ledger.MonthTotals{}, fmt.Errorf("failed to parse transfers-out total: %w", err)
	}

	return totals, nil
}

const snapshotColumns = `wallet_id, month, opening_balance::text, total_income::text,
	total_expense::text, total_transfers_in::text, total_transfers_out::text,
	closing_balance::text, is_closed, created_at, updated_at`

// GetSnapshot retrieves one wallet-month snapshot. Returns
// ledger.ErrSnapshotNotFound when the row does not exist; it never creates.
func (r *LedgerRepository) GetSnapshot(ctx context.Context, walletID uuid.UUID, month ledger.Month) (*ledger.Snapshot, error) {
	return r.getSnapshot(ctx, walletID, month, false)
}

// GetSnapshotForUpdate retrieves a snapshot with a FOR UPDATE row lock.
// Requires an active transaction context.
func (r *LedgerRepository) GetSnapshotForUpdate(ctx context.Context, walletID uuid.UUID, month ledger.Month) (*ledger.Snapshot, error) {
	if r.getTxFromContext(ctx) == nil {
		return nil, fmt.Errorf("snapshot lock requires a transaction")
	}
	return r.getSnapshot(ctx, walletID, month, true)
}

func (r *LedgerRepository) getSnapshot(ctx context.Context, walletID uuid.UUID, month ledger.Month, forUpdate bool) (*ledger.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM monthly_snapshots
		WHERE wallet_id = $1 AND month = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	q := r.getQueryer(ctx)
	snap, err := scanSnapshot(q.QueryRow(ctx, query, walletID, month.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return snap, nil
}

// CreateSnapshot inserts a snapshot row. A concurrent insert of the same
// (wallet, month) key is tolerated; callers re-read to observe the winner.
func (r *LedgerRepository) CreateSnapshot(ctx context.Context, s *ledger.Snapshot) error {
	query := `
		INSERT INTO monthly_snapshots (wallet_id, month, opening_balance, total_income,
			total_expense, total_transfers_in, total_transfers_out, closing_balance,
			is_closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (wallet_id, month) DO NOTHING
	`

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	q := r.getQueryer(ctx)
	_, err := q.Exec(ctx, query,
		s.WalletID,
		s.Month.String(),
		s.Opening.String(),
		s.Income.String(),
		s.Expense.String(),
		s.TransfersIn.String(),
		s.TransfersOut.String(),
		s.Closing.String(),
		s.Closed,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

// UpdateSnapshot persists recomputed totals and the closed flag for an
// existing snapshot row.
func (r *LedgerRepository) UpdateSnapshot(ctx context.Context, s *ledger.Snapshot) error {
	query := `
		UPDATE monthly_snapshots
		SET opening_balance = $3, total_income = $4, total_expense = $5,
			total_transfers_in = $6, total_transfers_out = $7, closing_balance = $8,
			is_closed = $9, updated_at = $10
		WHERE wallet_id = $1 AND month = $2
	`

	s.UpdatedAt = time.Now()

	q := r.getQueryer(ctx)
	tag, err := q.Exec(ctx, query,
		s.WalletID,
		s.Month.String(),
		s.Opening.String(),
		s.Income.String(),
		s.Expense.String(),
		s.TransfersIn.String(),
		s.TransfersOut.String(),
		s.Closing.String(),
		s.Closed,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrSnapshotNotFound
	}

	return nil
}

// ListOpenSnapshots returns every snapshot for the given month that has not
// been closed yet.
func (r *LedgerRepository) ListOpenSnapshots(ctx context.Context, month ledger.Month) ([]*ledger.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM monthly_snapshots
		WHERE month = $1 AND is_closed = FALSE
		ORDER BY wallet_id
	`

	q := r.getQueryer(ctx)
	rows, err := q.Query(ctx, query, month.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list open snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*ledger.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// LockWallet takes a transaction-scoped advisory lock on the wallet, so all
// mutations of one wallet's snapshot chain serialize. The lock is released
// automatically on commit or rollback.
func (r *LedgerRepository) LockWallet(ctx context.Context, walletID uuid.UUID) error {
	tx := r.getTxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("wallet lock requires a transaction")
	}

	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, walletID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
	}

	return nil
}

func scanSnapshot(row pgx.Row) (*ledger.Snapshot, error) {
	var (
		snap     ledger.Snapshot
		monthStr string
		opening  string
		income   string
		expense  string
		in       string
		out      string
		closing  string
	)

	err := row.Scan(
		&snap.WalletID,
		&monthStr,
		&opening,
		&income,
		&expense,
		&in,
		&out,
		&closing,
		&snap.Closed,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if snap.Month, err = ledger.ParseMonth(monthStr); err != nil {
		return nil, fmt.Errorf("invalid month in snapshot row: %w", err)
	}
	if snap.Opening, err = decimal.NewFromString(opening); err != nil {
		return nil, fmt.Errorf("invalid opening balance: %w", err)
	}
	if snap.Income, err = decimal.NewFromString(income); err != nil {
		return nil, fmt.Errorf("invalid income total: %w", err)
	}
	if snap.Expense, err = decimal.NewFromString(expense); err != nil {
		return nil, fmt.Errorf("invalid expense total: %w", err)
	}
	if snap.TransfersIn, err = decimal.NewFromString(in); err != nil {
		return nil, fmt.Errorf("invalid transfers-in total: %w", err)
	}
	if snap.TransfersOut, err = decimal.NewFromString(out); err != nil {
		return nil, fmt.Errorf("invalid transfers-out total: %w", err)
	}
	if snap.Closing, err = decimal.NewFromString(closing); err != nil {
		return nil, fmt.Errorf("invalid closing balance: %w", err)
	}

	return &snap, nil
}

// Transaction management using pgx transactions stored in context.

type ctxKey string

const txContextKey ctxKey = "ledger_tx"

// BeginTx starts a new database transaction and stores it in the context
func (r *LedgerRepository) BeginTx(ctx context.Context) (context.Context, error) {
	if tx := r.getTxFromContext(ctx); tx != nil {
		return ctx, fmt.Errorf("transaction already in progress")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return context.WithValue(ctx, txContextKey, tx), nil
}

// CommitTx commits the database transaction from the context
func (r *LedgerRepository) CommitTx(ctx context.Context) error {
	tx := r.getTxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("no transaction in context")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RollbackTx rolls back the database transaction from the context
func (r *LedgerRepository) RollbackTx(ctx context.Context) error {
	tx := r.getTxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("no transaction in context")
	}

	if err := tx.Rollback(ctx); err != nil {
		// Ignore already rolled back or committed errors
		if errors.Is(err, pgx.ErrTxClosed) {
			return nil
		}
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// getTxFromContext retrieves the transaction from context if one exists
func (r *LedgerRepository) getTxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txContextKey).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// getQueryer returns the transaction if one exists in context, otherwise the
// pool, so repository methods work both inside and outside transactions.
func (r *LedgerRepository) getQueryer(ctx context.Context) interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
} {
	if tx := r.getTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}
