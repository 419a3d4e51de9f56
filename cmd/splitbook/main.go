package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/config"
	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/handler"
	"github.com/dmelton/splitbook/internal/infra/airtable"
	"github.com/dmelton/splitbook/internal/infra/cache"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/infra/resilience"
	"github.com/dmelton/splitbook/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.AirtableBaseID == "" || cfg.AirtableAPIKey == "" {
		logger.Fatal("AIRTABLE_BASE_ID and AIRTABLE_API_KEY are required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "splitbook")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	summaryCache := cache.New[domain.SummaryReport](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("record-store")
	importBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Record store client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := airtable.NewClient(
		httpClient,
		cfg.StoreBaseURL(),
		cfg.AirtableAPIKey,
		cb,
		resilienceCfg,
		metrics,
		logger,
	)

	// --- Services ---
	authSvc := service.NewAuthService(store, store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	accountSvc := service.NewAccountService(store, store, metrics, logger)
	categorySvc := service.NewCategoryService(store, store, logger)
	transactionSvc := service.NewTransactionService(store, store, store, store, summaryCache, logger)
	reportSvc := service.NewReportService(store, store, summaryCache, metrics, logger)
	importSvc := service.NewImportService(store, store, store, summaryCache, importBulkhead, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:         authSvc,
		Accounts:     accountSvc,
		Categories:   categorySvc,
		Transactions: transactionSvc,
		Reports:      reportSvc,
		Imports:      importSvc,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
