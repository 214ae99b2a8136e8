package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
	"github.com/dkotenko/cashtrack/pkg/logger"
)

// SummaryServiceInterface defines the summary read the dashboard needs.
type SummaryServiceInterface interface {
	Summary(ctx context.Context, userID uuid.UUID, month ledger.Month) (*ledger.SummaryReport, error)
}

// SummaryCacheInterface defines the summary cache operations. Implementations
// must treat the cache as best-effort; the store is authoritative.
type SummaryCacheInterface interface {
	Get(ctx context.Context, userID uuid.UUID, month ledger.Month) (*ledger.SummaryReport, bool, error)
	Set(ctx context.Context, userID uuid.UUID, month ledger.Month, report *ledger.SummaryReport) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// DashboardHandler serves the monthly summary view
type DashboardHandler struct {
	summaryService SummaryServiceInterface
	cache          SummaryCacheInterface
	logger         *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler. The cache may be nil.
func NewDashboardHandler(summaryService SummaryServiceInterface, cache SummaryCacheInterface, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		summaryService: summaryService,
		cache:          cache,
		logger:         log.WithField("component", "dashboard_handler"),
	}
}

// parseMonthParam reads the optional ?month=YYYY-MM query parameter,
// defaulting to the current month.
func parseMonthParam(r *http.Request) (ledger.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return ledger.CurrentMonth(), nil
	}
	return ledger.ParseMonth(raw)
}

// GetSummary handles GET /dashboard/summary
// Returns the per-kind balance aggregation for one month. Reading never
// creates snapshots; months without activity come back as zeros.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
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

	if h.cache != nil {
		if report, hit, err := h.cache.Get(r.Context(), userID, month); err == nil && hit {
			respondWithJSON(w, http.StatusOK, report)
			return
		}
	}

	report, err := h.summaryService.Summary(r.Context(), userID, month)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidMonth) {
			respondWithError(w, http.StatusBadRequest, "invalid month")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), userID, month, report); err != nil {
			h.logger.Warn("failed to cache summary", "user_id", userID, "error", err)
		}
	}

	respondWithJSON(w, http.StatusOK, report)
}
