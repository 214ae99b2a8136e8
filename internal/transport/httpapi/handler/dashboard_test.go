package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/handler"
)

// fakeSummaryService implements SummaryServiceInterface for testing
type fakeSummaryService struct {
	report *ledger.SummaryReport
	err    error
	calls  int
}

func (f *fakeSummaryService) Summary(_ context.Context, _ uuid.UUID, month ledger.Month) (*ledger.SummaryReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &ledger.SummaryReport{Month: month}, nil
}

// cannedCache serves a fixed report for every Get
type cannedCache struct {
	fakeSummaryCache
	report *ledger.SummaryReport
	sets   int
}

func (c *cannedCache) Get(context.Context, uuid.UUID, ledger.Month) (*ledger.SummaryReport, bool, error) {
	if c.report == nil {
		return nil, false, nil
	}
	return c.report, true, nil
}

func (c *cannedCache) Set(context.Context, uuid.UUID, ledger.Month, *ledger.SummaryReport) error {
	c.sets++
	return nil
}

func TestDashboardHandler_GetSummary(t *testing.T) {
	userID := uuid.New()
	month := ledger.NewMonth(2026, time.March)

	t.Run("returns summary for requested month", func(t *testing.T) {
		svc := &fakeSummaryService{report: &ledger.SummaryReport{
			Month:        month,
			TotalIncome:  decimal.NewFromInt(1000),
			TotalExpense: decimal.NewFromInt(300),
			TotalBalance: decimal.NewFromInt(700),
		}}
		h := handler.NewDashboardHandler(svc, nil, testLogger())

		req := authedRequest(http.MethodGet, "/api/v1/dashboard/summary?month=2026-03", "", userID)
		rec := httptest.NewRecorder()
		h.GetSummary(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ledger.SummaryReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, month, resp.Month)
		assert.True(t, resp.TotalBalance.Equal(decimal.NewFromInt(700)))
	})

	t.Run("cache hit skips the service", func(t *testing.T) {
		svc := &fakeSummaryService{}
		cache := &cannedCache{report: &ledger.SummaryReport{Month: month}}
		h := handler.NewDashboardHandler(svc, cache, testLogger())

		req := authedRequest(http.MethodGet, "/api/v1/dashboard/summary?month=2026-03", "", userID)
		rec := httptest.NewRecorder()
		h.GetSummary(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, svc.calls)
	})

	t.Run("cache miss populates the cache", func(t *testing.T) {
		svc := &fakeSummaryService{}
		cache := &cannedCache{}
		h := handler.NewDashboardHandler(svc, cache, testLogger())

		req := authedRequest(http.MethodGet, "/api/v1/dashboard/summary?month=2026-03", "", userID)
		rec := httptest.NewRecorder()
		h.GetSummary(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.calls)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("invalid month", func(t *testing.T) {
		h := handler.NewDashboardHandler(&fakeSummaryService{}, nil, testLogger())

		req := authedRequest(http.MethodGet, "/api/v1/dashboard/summary?month=March-2026", "", userID)
		rec := httptest.NewRecorder()
		h.GetSummary(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing auth context", func(t *testing.T) {
		h := handler.NewDashboardHandler(&fakeSummaryService{}, nil, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
		rec := httptest.NewRecorder()
		h.GetSummary(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
