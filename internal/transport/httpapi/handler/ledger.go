package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
	"github.com/dkotenko/cashtrack/pkg/logger"
)

// LedgerAdminInterface defines the snapshot-chain operations exposed over
// HTTP: month close, manual recalculation, and explicit snapshot creation.
type LedgerAdminInterface interface {
	CloseMonth(ctx context.Context, month ledger.Month) error
	Recalculate(ctx context.Context, walletID, userID uuid.UUID, start ledger.Month) error
	Ensure(ctx context.Context, walletID uuid.UUID, month ledger.Month) (*ledger.Snapshot, error)
	Resolve(ctx context.Context, walletID uuid.UUID, month ledger.Month) (*ledger.Snapshot, error)
}

// LedgerHandler handles snapshot-chain maintenance requests
type LedgerHandler struct {
	ledgerService LedgerAdminInterface
	walletService WalletServiceInterface
	cache         SummaryCacheInterface
	logger        *logger.Logger
}

// NewLedgerHandler creates a new ledger maintenance handler
func NewLedgerHandler(ledgerService LedgerAdminInterface, walletService WalletServiceInterface, cache SummaryCacheInterface, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		walletService: walletService,
		cache:         cache,
		logger:        log.WithField("component", "ledger_handler"),
	}
}

// CloseMonthRequest represents the month close request body
type CloseMonthRequest struct {
	Month string `json:"month"`
}

// SnapshotResponse represents a wallet-month snapshot
type SnapshotResponse struct {
	WalletID     string `json:"wallet_id"`
	Month        string `json:"month"`
	Opening      string `json:"opening_balance"`
	Income       string `json:"total_income"`
	Expense      string `json:"total_expense"`
	TransfersIn  string `json:"total_transfers_in"`
	TransfersOut string `json:"total_transfers_out"`
	Closing      string `json:"closing_balance"`
	Closed       bool   `json:"is_closed"`
}

func toSnapshotResponse(s *ledger.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		WalletID:     s.WalletID.String(),
		Month:        s.Month.String(),
		Opening:      s.Opening.StringFixed(2),
		Income:       s.Income.StringFixed(2),
		Expense:      s.Expense.StringFixed(2),
		TransfersIn:  s.TransfersIn.StringFixed(2),
		TransfersOut: s.TransfersOut.StringFixed(2),
		Closing:      s.Closing.StringFixed(2),
		Closed:       s.Closed,
	}
}

// CloseMonth handles POST /ledger/close-month
// Freezes every open snapshot for the month and seeds the next month's
// snapshots with the closing balances.
func (h *LedgerHandler) CloseMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CloseMonthRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	month, err := ledger.ParseMonth(req.Month)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	if err := h.ledgerService.CloseMonth(r.Context(), month); err != nil {
		if errors.Is(err, ledger.ErrMonthClosed) {
			respondWithError(w, http.StatusConflict, "month is already closed")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to close month")
		return
	}

	h.invalidate(r.Context(), userID)
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "closed",
		"month":  month.String(),
	})
}

// Recalculate handles POST /wallets/{id}/recalculate
// Schedules an asynchronous forward cascade starting at the given month
// (default: current month).
func (h *LedgerHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	walletID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	month, err := parseMonthParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	if err := h.ledgerService.Recalculate(r.Context(), walletID, userID, month); err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			respondWithError(w, http.StatusNotFound, "wallet not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to schedule recalculation")
		return
	}

	h.invalidate(r.Context(), userID)
	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "scheduled",
		"month":  month.String(),
	})
}

// GetSnapshot handles GET /wallets/{id}/snapshots/{month}
// Pure read: a missing snapshot is a 404, never an implicit create.
func (h *LedgerHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	walletID, month, ok := h.walletMonthParams(w, r, userID)
	if !ok {
		return
	}

	snap, err := h.ledgerService.Resolve(r.Context(), walletID, month)
	if err != nil {
		if errors.Is(err, ledger.ErrSnapshotNotFound) {
			respondWithError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to resolve snapshot")
		return
	}

	respondWithJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// EnsureSnapshot handles POST /wallets/{id}/snapshots/{month}
// Explicitly materializes a snapshot, rolling the previous month's closing
// balance forward as the opening balance.
func (h *LedgerHandler) EnsureSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	walletID, month, ok := h.walletMonthParams(w, r, userID)
	if !ok {
		return
	}

	snap, err := h.ledgerService.Ensure(r.Context(), walletID, month)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			respondWithError(w, http.StatusNotFound, "wallet not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to ensure snapshot")
		return
	}

	respondWithJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// walletMonthParams parses the {id} and {month} URL parameters and checks
// that the wallet belongs to the requesting user.
func (h *LedgerHandler) walletMonthParams(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (uuid.UUID, ledger.Month, bool) {
	walletID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return uuid.Nil, ledger.Month{}, false
	}

	month, err := ledger.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return uuid.Nil, ledger.Month{}, false
	}

	if _, err := h.walletService.GetByID(r.Context(), walletID, userID); err != nil {
		respondWithError(w, http.StatusNotFound, "wallet not found")
		return uuid.Nil, ledger.Month{}, false
	}

	return walletID, month, true
}

func (h *LedgerHandler) invalidate(ctx context.Context, userID uuid.UUID) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, userID); err != nil {
		h.logger.Warn("failed to invalidate summary cache", "user_id", userID, "error", err)
	}
}
