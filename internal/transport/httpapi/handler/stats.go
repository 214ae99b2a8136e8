package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/module/stats"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
)

// StatsServiceInterface defines the reporting reads the stats endpoints need.
type StatsServiceInterface interface {
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, month ledger.Month) ([]stats.CategoryTotal, error)
	MonthlyTrend(ctx context.Context, userID uuid.UUID, year int) ([]stats.MonthTotal, error)
}

// StatsHandler handles reporting requests
type StatsHandler struct {
	statsService StatsServiceInterface
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService StatsServiceInterface) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// CategoryBreakdownResponse represents the per-category expense breakdown
type CategoryBreakdownResponse struct {
	Month      ledger.Month          `json:"month"`
	Categories []stats.CategoryTotal `json:"categories"`
}

// MonthlyTrendResponse represents the income/expense series for one year
type MonthlyTrendResponse struct {
	Year   int               `json:"year"`
	Months []stats.MonthTotal `json:"months"`
}

// GetExpensesByCategory handles GET /stats/expenses-by-category
func (h *StatsHandler) GetExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	month, err := parseMonthParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	categories, err := h.statsService.ExpensesByCategory(r.Context(), userID, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to aggregate expenses")
		return
	}
	if categories == nil {
		categories = []stats.CategoryTotal{}
	}

	respondWithJSON(w, http.StatusOK, CategoryBreakdownResponse{
		Month:      month,
		Categories: categories,
	})
}

// GetMonthlyTrend handles GET /stats/monthly-trend
func (h *StatsHandler) GetMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1970 || parsed > 9999 {
			respondWithError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}

	months, err := h.statsService.MonthlyTrend(r.Context(), userID, year)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build monthly trend")
		return
	}

	respondWithJSON(w, http.StatusOK, MonthlyTrendResponse{
		Year:   year,
		Months: months,
	})
}
