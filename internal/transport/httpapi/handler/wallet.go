package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/platform/wallet"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
)

// WalletServiceInterface defines the interface for wallet operations
type WalletServiceInterface interface {
	Create(ctx context.Context, w *wallet.Wallet) (*wallet.Wallet, error)
	List(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*wallet.Wallet, error)
}

// WalletHandler handles wallet-related HTTP requests
type WalletHandler struct {
	walletService WalletServiceInterface
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService WalletServiceInterface) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// CreateWalletRequest represents the wallet creation request
type CreateWalletRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// WalletResponse represents a wallet response
type WalletResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// WalletsListResponse represents the response for listing wallets
type WalletsListResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

func toWalletResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Name:      w.Name,
		Kind:      string(w.Kind),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateWallet handles POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wlt := &wallet.Wallet{
		UserID: userID,
		Name:   req.Name,
		Kind:   wallet.Kind(req.Kind),
	}

	created, err := h.walletService.Create(r.Context(), wlt)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrDuplicateWalletName):
			respondWithError(w, http.StatusConflict, "wallet name already exists")
		case errors.Is(err, wallet.ErrMissingWalletName):
			respondWithError(w, http.StatusBadRequest, "wallet name is required")
		case errors.Is(err, wallet.ErrWalletNameTooLong):
			respondWithError(w, http.StatusBadRequest, "wallet name is too long")
		case errors.Is(err, wallet.ErrInvalidKind):
			respondWithError(w, http.StatusBadRequest, "wallet kind must be cash or bank")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to create wallet")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, toWalletResponse(created))
}

// GetWallets handles GET /wallets
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	wallets, err := h.walletService.List(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list wallets")
		return
	}

	resp := WalletsListResponse{Wallets: make([]WalletResponse, 0, len(wallets))}
	for _, wlt := range wallets {
		resp.Wallets = append(resp.Wallets, toWalletResponse(wlt))
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// GetWallet handles GET /wallets/{id}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	wlt, err := h.walletService.GetByID(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrWalletNotFound), errors.Is(err, wallet.ErrUnauthorizedAccess):
			// Hide other users' wallets behind the same 404
			respondWithError(w, http.StatusNotFound, "wallet not found")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to get wallet")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, toWalletResponse(wlt))
}
