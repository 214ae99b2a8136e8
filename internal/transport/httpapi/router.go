package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dkotenko/cashtrack/internal/transport/httpapi/handler"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
	"github.com/dkotenko/cashtrack/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	AllowedOrigins     []string
	AuthHandler        *handler.AuthHandler
	WalletHandler      *handler.WalletHandler
	TransactionHandler *handler.TransactionHandler
	DashboardHandler   *handler.DashboardHandler
	StatsHandler       *handler.StatsHandler
	InsightsHandler    *handler.InsightsHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	JWTMiddleware      func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public - no authentication required)
		if cfg.AuthHandler != nil {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Protected routes (require JWT authentication)
		if cfg.JWTMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.JWTMiddleware)

				// Wallet routes
				if cfg.WalletHandler != nil {
					r.Post("/wallets", cfg.WalletHandler.CreateWallet)
					r.Get("/wallets", cfg.WalletHandler.GetWallets)
					r.Get("/wallets/{id}", cfg.WalletHandler.GetWallet)
				}

				// Journal mutation routes
				if cfg.TransactionHandler != nil {
					r.Post("/transactions/income", cfg.TransactionHandler.AddIncome)
					r.Post("/transactions/expense", cfg.TransactionHandler.AddExpense)
					r.Post("/transactions/transfer", cfg.TransactionHandler.AddTransfer)
				}

				// Dashboard routes
				if cfg.DashboardHandler != nil {
					r.Get("/dashboard/summary", cfg.DashboardHandler.GetSummary)
				}

				// Reporting routes
				if cfg.StatsHandler != nil {
					r.Get("/stats/expenses-by-category", cfg.StatsHandler.GetExpensesByCategory)
					r.Get("/stats/monthly-trend", cfg.StatsHandler.GetMonthlyTrend)
				}

				// Insights routes
				if cfg.InsightsHandler != nil {
					r.Get("/insights", cfg.InsightsHandler.GetInsights)
				}

				// Snapshot-chain maintenance routes
				if cfg.LedgerHandler != nil {
					r.Post("/ledger/close-month", cfg.LedgerHandler.CloseMonth)
					r.Post("/wallets/{id}/recalculate", cfg.LedgerHandler.Recalculate)
					r.Get("/wallets/{id}/snapshots/{month}", cfg.LedgerHandler.GetSnapshot)
					r.Post("/wallets/{id}/snapshots/{month}", cfg.LedgerHandler.EnsureSnapshot)
				}
			})
		}
	})

	return r
}
