package handler

import (
	"net/http"

	"github.com/dkotenko/cashtrack/internal/module/insights"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
)

// InsightsHandler serves spending-pattern insights
type InsightsHandler struct {
	summaryService SummaryServiceInterface
	analyzer       *insights.Service
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(summaryService SummaryServiceInterface, analyzer *insights.Service) *InsightsHandler {
	return &InsightsHandler{
		summaryService: summaryService,
		analyzer:       analyzer,
	}
}

// GetInsights handles GET /insights
// Analyzes the requested month's summary (default: current month).
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.summaryService.Summary(r.Context(), userID, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	respondWithJSON(w, http.StatusOK, h.analyzer.Analyze(report))
}
