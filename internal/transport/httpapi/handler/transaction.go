package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
	"github.com/dkotenko/cashtrack/pkg/logger"
	"github.com/dkotenko/cashtrack/pkg/money"
)

// LedgerServiceInterface defines the ledger mutations the transaction
// endpoints need.
type LedgerServiceInterface interface {
	AddIncome(ctx context.Context, in ledger.IncomeInput) (*ledger.Entry, error)
	AddExpense(ctx context.Context, in ledger.ExpenseInput) (*ledger.Entry, error)
	AddTransfer(ctx context.Context, in ledger.TransferInput) (*ledger.Entry, error)
}

// TransactionHandler handles journal mutation requests
type TransactionHandler struct {
	ledgerService LedgerServiceInterface
	cache         SummaryCacheInterface
	logger        *logger.Logger
}

// NewTransactionHandler creates a new transaction handler. The cache may be
// nil, in which case invalidation is skipped.
func NewTransactionHandler(ledgerService LedgerServiceInterface, cache SummaryCacheInterface, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		cache:         cache,
		logger:        log.WithField("component", "transaction_handler"),
	}
}

// IncomeRequest represents an income entry request
type IncomeRequest struct {
	WalletID string `json:"wallet_id"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

// ExpenseRequest represents an expense entry request
type ExpenseRequest struct {
	WalletID string `json:"wallet_id"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

// TransferRequest represents a wallet-to-wallet transfer request
type TransferRequest struct {
	SourceWalletID string `json:"source_wallet_id"`
	TargetWalletID string `json:"target_wallet_id"`
	Amount         string `json:"amount"`
	Date           string `json:"date"`
	Note           string `json:"note"`
}

// EntryResponse represents a journal entry response
type EntryResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	WalletID       *string `json:"wallet_id,omitempty"`
	SourceWalletID *string `json:"source_wallet_id,omitempty"`
	TargetWalletID *string `json:"target_wallet_id,omitempty"`
	Amount         string  `json:"amount"`
	Date           string  `json:"date"`
	Category       string  `json:"category,omitempty"`
	Note           string  `json:"note,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func toEntryResponse(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:        e.ID.String(),
		Kind:      string(e.Kind),
		Amount:    money.Format(e.Amount),
		Date:      e.Date.Format("2006-01-02"),
		Category:  e.Category,
		Note:      e.Note,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.WalletID != nil {
		s := e.WalletID.String()
		resp.WalletID = &s
	}
	if e.SourceWalletID != nil {
		s := e.SourceWalletID.String()
		resp.SourceWalletID = &s
	}
	if e.TargetWalletID != nil {
		s := e.TargetWalletID.String()
		resp.TargetWalletID = &s
	}
	return resp
}

// parseEntryDate accepts a calendar date, defaulting to today when omitted.
func parseEntryDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// AddIncome handles POST /transactions/income
func (h *TransactionHandler) AddIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req IncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.ledgerService.AddIncome(r.Context(), ledger.IncomeInput{
		WalletID: walletID,
		UserID:   userID,
		Amount:   amount,
		Date:     date,
		Category: req.Category,
		Note:     req.Note,
	})
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	h.invalidateSummaries(r.Context(), userID)
	respondWithJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// AddExpense handles POST /transactions/expense
func (h *TransactionHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.ledgerService.AddExpense(r.Context(), ledger.ExpenseInput{
		WalletID: walletID,
		UserID:   userID,
		Amount:   amount,
		Date:     date,
		Category: req.Category,
		Note:     req.Note,
	})
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	h.invalidateSummaries(r.Context(), userID)
	respondWithJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// AddTransfer handles POST /transactions/transfer
func (h *TransactionHandler) AddTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sourceID, err := uuid.Parse(req.SourceWalletID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid source wallet ID")
		return
	}

	targetID, err := uuid.Parse(req.TargetWalletID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid target wallet ID")
		return
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.ledgerService.AddTransfer(r.Context(), ledger.TransferInput{
		SourceWalletID: sourceID,
		TargetWalletID: targetID,
		UserID:         userID,
		Amount:         amount,
		Date:           date,
		Note:           req.Note,
	})
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	h.invalidateSummaries(r.Context(), userID)
	respondWithJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// respondLedgerError maps ledger domain errors to HTTP status codes.
func (h *TransactionHandler) respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		respondWithError(w, http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ledger.ErrWalletNotFound):
		respondWithError(w, http.StatusNotFound, "wallet not found")
	case errors.Is(err, ledger.ErrMonthClosed):
		respondWithError(w, http.StatusConflict, "month is closed")
	case errors.Is(err, ledger.ErrSameWalletTransfer):
		respondWithError(w, http.StatusBadRequest, "source and target wallets must differ")
	case errors.Is(err, ledger.ErrNonPositiveAmount):
		respondWithError(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ledger.ErrZeroDate):
		respondWithError(w, http.StatusBadRequest, "entry date is required")
	default:
		respondWithError(w, http.StatusInternalServerError, "failed to record transaction")
	}
}

// invalidateSummaries drops the user's cached summaries after a mutation.
// Cache failures are logged and swallowed; the store stays authoritative.
func (h *TransactionHandler) invalidateSummaries(ctx context.Context, userID uuid.UUID) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, userID); err != nil {
		h.logger.Warn("failed to invalidate summary cache", "user_id", userID, "error", err)
	}
}
