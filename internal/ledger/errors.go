package ledger

import "errors"

// Entry errors
var (
	ErrInvalidEntryKind   = errors.New("invalid journal entry kind")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
	ErrMissingWallet      = errors.New("entry must reference a wallet")
	ErrMissingTransferLeg = errors.New("transfer must reference source and target wallets")
	ErrSameWalletTransfer = errors.New("transfer source and target must differ")
	ErrZeroDate           = errors.New("entry date is required")
)

// Snapshot and chain errors
var (
	ErrInvalidMonth         = errors.New("invalid month key")
	ErrSnapshotNotFound     = errors.New("monthly snapshot not found")
	ErrMonthClosed          = errors.New("month is closed")
	ErrCascadeLimitExceeded = errors.New("cascade exceeded month limit")
)

// Mutation errors
var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
