package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dkotenko/cashtrack/internal/infra/postgres"
	infraRedis "github.com/dkotenko/cashtrack/internal/infra/redis"
	"github.com/dkotenko/cashtrack/internal/ledger"
	"github.com/dkotenko/cashtrack/internal/module/insights"
	"github.com/dkotenko/cashtrack/internal/module/stats"
	"github.com/dkotenko/cashtrack/internal/platform/user"
	"github.com/dkotenko/cashtrack/internal/platform/wallet"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/handler"
	"github.com/dkotenko/cashtrack/internal/transport/httpapi/middleware"
	"github.com/dkotenko/cashtrack/pkg/config"
	"github.com/dkotenko/cashtrack/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting CashTrack API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Apply schema migrations before opening the pool
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("Database migrations applied")

	// Initialize database connection pool
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize Redis client for summary caching. Redis is optional: without
	// it summaries are computed from the store on every request.
	var summaryCache *infraRedis.SummaryCache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, summary caching disabled", "error", err)
			redisClient = nil
		} else {
			summaryCache = infraRedis.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, log)
			log.Info("Redis connection established")
		}
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db.Pool)
	walletRepo := postgres.NewWalletRepository(db.Pool)
	ledgerRepo := postgres.NewLedgerRepository(db.Pool)
	statsRepo := postgres.NewStatsRepository(db.Pool)

	// Initialize services
	walletSvc := wallet.NewService(walletRepo)
	userSvc := user.NewService(userRepo, walletSvc)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)
	ledgerSvc := ledger.NewService(ledgerRepo, walletRepo, log)
	statsSvc := stats.NewService(statsRepo)
	insightsSvc := insights.NewService()

	// Wire the asynchronous cascade scheduler into the ledger service
	scheduler := ledger.NewScheduler(ledger.SchedulerConfig{
		Workers:     cfg.CascadeWorkers,
		QueueSize:   cfg.CascadeQueueSize,
		MaxAttempts: cfg.CascadeRetries,
		RetryDelay:  cfg.CascadeRetryDelay,
	}, ledgerSvc, log)
	ledgerSvc.SetCascadeQueue(scheduler)

	// Initialize HTTP handlers
	var cacheIface handler.SummaryCacheInterface
	if summaryCache != nil {
		cacheIface = summaryCache
	}

	authHandler := handler.NewAuthHandler(userSvc, jwtSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc, cacheIface, log)
	dashboardHandler := handler.NewDashboardHandler(ledgerSvc, cacheIface, log)
	statsHandler := handler.NewStatsHandler(statsSvc)
	insightsHandler := handler.NewInsightsHandler(ledgerSvc, insightsSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc, walletSvc, cacheIface, log)

	var cachePinger handler.Pinger
	if redisClient != nil {
		cachePinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler := handler.NewHealthHandler(handler.PingerFunc(db.Health), cachePinger)

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:5174"}
	if cfg.IsProduction() {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	r := httpapi.NewRouter(httpapi.Config{
		Logger:             log,
		AllowedOrigins:     allowedOrigins,
		AuthHandler:        authHandler,
		WalletHandler:      walletHandler,
		TransactionHandler: transactionHandler,
		DashboardHandler:   dashboardHandler,
		StatsHandler:       statsHandler,
		InsightsHandler:    insightsHandler,
		LedgerHandler:      ledgerHandler,
		HealthHandler:      healthHandler,
		JWTMiddleware:      middleware.JWTMiddleware(jwtSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutdown signal received")

		// Stop accepting work, then drain in-flight cascades
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		scheduler.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
