package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/handler"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
	"github.com/dkotenko/cashtrack/pkg/logger"
)

// fakeLedgerService implements LedgerServiceInterface for testing
type fakeLedgerService struct {
	incomeErr   error
	expenseErr  error
	transferErr error

	lastIncome   ledger.IncomeInput
	lastExpense  ledger.ExpenseInput
	lastTransfer ledger.TransferInput
}

func (f *fakeLedgerService) AddIncome(_ context.Context, in ledger.IncomeInput) (*ledger.Entry, error) {
	f.lastIncome = in
	if f.incomeErr != nil {
		return nil, f.incomeErr
	}
	return &ledger.Entry{
		ID:       uuid.New(),
		Kind:     ledger.EntryIncome,
		WalletID: &in.WalletID,
		Amount:   in.Amount,
		Date:     in.Date,
		Category: in.Category,
	}, nil
}

func (f *fakeLedgerService) AddExpense(_ context.Context, in ledger.ExpenseInput) (*ledger.Entry, error) {
	f.lastExpense = in
	if f.expenseErr != nil {
		return nil, f.expenseErr
	}
	return &ledger.Entry{
		ID:       uuid.New(),
		Kind:     ledger.EntryExpense,
		WalletID: &in.WalletID,
		Amount:   in.Amount,
		Date:     in.Date,
		Category: in.Category,
	}, nil
}

func (f *fakeLedgerService) AddTransfer(_ context.Context, in ledger.TransferInput) (*ledger.Entry, error) {
	f.lastTransfer = in
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return &ledger.Entry{
		ID:             uuid.New(),
		Kind:           ledger.EntryTransfer,
		SourceWalletID: &in.SourceWalletID,
		TargetWalletID: &in.TargetWalletID,
		Amount:         in.Amount,
		Date:           in.Date,
	}, nil
}

// fakeSummaryCache records invalidations
type fakeSummaryCache struct {
	invalidated []uuid.UUID
}

func (f *fakeSummaryCache) Get(context.Context, uuid.UUID, ledger.Month) (*ledger.SummaryReport, bool, error) {
	return nil, false, nil
}

func (f *fakeSummaryCache) Set(context.Context, uuid.UUID, ledger.Month, *ledger.SummaryReport) error {
	return nil
}

func (f *fakeSummaryCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	f.invalidated = append(f.invalidated, userID)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New("test", io.Discard)
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestTransactionHandler_AddIncome(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	t.Run("valid request", func(t *testing.T) {
		svc := &fakeLedgerService{}
		cache := &fakeSummaryCache{}
		h := handler.NewTransactionHandler(svc, cache, testLogger())

		body := `{"wallet_id":"` + walletID.String() + `","amount":"1000.50","date":"2026-03-05","category":"salary"}`
		rec := httptest.NewRecorder()
		h.AddIncome(rec, authedRequest(http.MethodPost, "/api/v1/transactions/income", body, userID))

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp handler.EntryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "income", resp.Kind)
		assert.Equal(t, "1000.50", resp.Amount)
		assert.Equal(t, "2026-03-05", resp.Date)
		assert.Equal(t, "salary", resp.Category)

		assert.Equal(t, userID, svc.lastIncome.UserID)
		assert.Equal(t, walletID, svc.lastIncome.WalletID)
		assert.Equal(t, []uuid.UUID{userID}, cache.invalidated)
	})

	t.Run("missing auth context", func(t *testing.T) {
		h := handler.NewTransactionHandler(&fakeLedgerService{}, nil, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/income", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		h.AddIncome(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid amount", func(t *testing.T) {
		h := handler.NewTransactionHandler(&fakeLedgerService{}, nil, testLogger())

		body := `{"wallet_id":"` + walletID.String() + `","amount":"-5"}`
		rec := httptest.NewRecorder()
		h.AddIncome(rec, authedRequest(http.MethodPost, "/api/v1/transactions/income", body, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid date", func(t *testing.T) {
		h := handler.NewTransactionHandler(&fakeLedgerService{}, nil, testLogger())

		body := `{"wallet_id":"` + walletID.String() + `","amount":"10","date":"03/05/2026"}`
		rec := httptest.NewRecorder()
		h.AddIncome(rec, authedRequest(http.MethodPost, "/api/v1/transactions/income", body, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransactionHandler_AddExpense_ErrorMapping(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "insufficient funds", serviceErr: ledger.ErrInsufficientFunds, wantStatus: http.StatusBadRequest},
		{name: "wallet not found", serviceErr: ledger.ErrWalletNotFound, wantStatus: http.StatusNotFound},
		{name: "month closed", serviceErr: ledger.ErrMonthClosed, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLedgerService{expenseErr: tt.serviceErr}
			cache := &fakeSummaryCache{}
			h := handler.NewTransactionHandler(svc, cache, testLogger())

			body := `{"wallet_id":"` + walletID.String() + `","amount":"50","date":"2026-03-05"}`
			rec := httptest.NewRecorder()
			h.AddExpense(rec, authedRequest(http.MethodPost, "/api/v1/transactions/expense", body, userID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			// Failed mutations must not touch the cache
			assert.Empty(t, cache.invalidated)
		})
	}
}

func TestTransactionHandler_AddTransfer(t *testing.T) {
	userID := uuid.New()
	sourceID := uuid.New()
	targetID := uuid.New()

	t.Run("valid request", func(t *testing.T) {
		svc := &fakeLedgerService{}
		h := handler.NewTransactionHandler(svc, nil, testLogger())

		body := `{"source_wallet_id":"` + sourceID.String() + `","target_wallet_id":"` + targetID.String() + `","amount":"100","date":"2026-03-10"}`
		rec := httptest.NewRecorder()
		h.AddTransfer(rec, authedRequest(http.MethodPost, "/api/v1/transactions/transfer", body, userID))

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp handler.EntryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "transfer", resp.Kind)
		require.NotNil(t, resp.SourceWalletID)
		require.NotNil(t, resp.TargetWalletID)
		assert.Equal(t, sourceID.String(), *resp.SourceWalletID)
		assert.Equal(t, targetID.String(), *resp.TargetWalletID)
		assert.Nil(t, resp.WalletID)
	})

	t.Run("same wallet rejected by service", func(t *testing.T) {
		svc := &fakeLedgerService{transferErr: ledger.ErrSameWalletTransfer}
		h := handler.NewTransactionHandler(svc, nil, testLogger())

		body := `{"source_wallet_id":"` + sourceID.String() + `","target_wallet_id":"` + sourceID.String() + `","amount":"100"}`
		rec := httptest.NewRecorder()
		h.AddTransfer(rec, authedRequest(http.MethodPost, "/api/v1/transactions/transfer", body, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed wallet id", func(t *testing.T) {
		h := handler.NewTransactionHandler(&fakeLedgerService{}, nil, testLogger())

		body := `{"source_wallet_id":"not-a-uuid","target_wallet_id":"` + targetID.String() + `","amount":"100"}`
		rec := httptest.NewRecorder()
		h.AddTransfer(rec, authedRequest(http.MethodPost, "/api/v1/transactions/transfer", body, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
