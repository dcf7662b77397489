package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/promptgate/internal"
	"github.com/DukeRupert/promptgate/internal/ai"
	"github.com/DukeRupert/promptgate/internal/ai/anthropic"
	"github.com/DukeRupert/promptgate/internal/ai/gemini"
	"github.com/DukeRupert/promptgate/internal/ai/mock"
	"github.com/DukeRupert/promptgate/internal/archive"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/handler"
	"github.com/DukeRupert/promptgate/internal/ledger"
	"github.com/DukeRupert/promptgate/internal/metrics"
	"github.com/DukeRupert/promptgate/internal/middleware"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/DukeRupert/promptgate/internal/service"
	"github.com/DukeRupert/promptgate/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := internal.PingDatabase(ctx, db, internal.DefaultConnectRetry, logger); err != nil {
		return err
	}

	// Run migrations
	if err := internal.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	queries := repository.New(db)
	catalog := domain.DefaultPlanCatalog()

	healthChecks := map[string]handler.HealthCheck{
		"database": db.PingContext,
	}

	// Usage ledger
	var redisClient *redis.Client
	if cfg.LedgerBackend == ledger.BackendRedis {
		redisClient, err = internal.ConnectRedis(ctx, cfg.RedisURL, internal.DefaultConnectRetry, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	usageLedger, err := ledger.New(ledger.Config{
		Backend:    cfg.LedgerBackend,
		DB:         db,
		Redis:      redisClient,
		SQLitePath: cfg.SQLitePath,
	}, logger)
	if err != nil {
		return fmt.Errorf("ledger initialization failed: %w", err)
	}
	if c, ok := usageLedger.(io.Closer); ok {
		defer c.Close()
	}
	logger.Info("Usage ledger ready", "backend", cfg.LedgerBackend)

	// Generation provider
	provider, err := newProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("AI provider initialization failed: %w", err)
	}
	logger.Info("AI provider ready", "provider", provider.Name(), "max_attempts", cfg.AIMaxAttempts)

	// Raw output archive
	rawArchive, err := archive.New(archive.Config{
		Provider:          cfg.ArchiveProvider,
		LocalPath:         cfg.LocalArchivePath,
		R2AccountID:       cfg.R2AccountID,
		R2AccessKeyID:     cfg.R2AccessKeyID,
		R2SecretAccessKey: cfg.R2SecretAccessKey,
		R2Bucket:          cfg.R2BucketName,
		R2Endpoint:        cfg.R2Endpoint,
	}, logger)
	if err != nil {
		return fmt.Errorf("archive initialization failed: %w", err)
	}

	// Initialize services
	resolver := service.NewEntitlementResolver(store.NewAccountStore(queries), catalog, logger)
	admission := service.NewAdmissionController(resolver, usageLedger, logger)
	orchestrator := service.NewOrchestrator(provider, service.OrchestratorConfig{
		MaxAttempts: cfg.AIMaxAttempts,
		BaseDelay:   cfg.AIRetryBaseDelay,
	}, logger)
	gateway := service.NewGateway(service.GatewayDeps{
		Admission:    admission,
		Orchestrator: orchestrator,
		Ledger:       usageLedger,
		Generations:  queries,
		Archive:      rawArchive,
	}, logger)
	subscriptions := service.NewSubscriptionService(db, queries, catalog, logger)
	usage := service.NewUsageService(admission, usageLedger, logger)

	// Initialize middleware
	accounts := middleware.NewAccountMiddleware(logger)
	requireAccount := accounts.RequireAccount
	requireGenerate := requireAccount
	if cfg.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
		defer limiter.Stop()
		requireGenerate = middleware.Stack(requireAccount, middleware.NewRateLimitMiddleware(limiter, logger).Limit)
	}
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuth.Enabled() {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD are empty; /metrics is unprotected")
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	handler.NewHealthHandler(healthChecks, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	handler.NewGenerateHandler(gateway, logger).RegisterRoutes(mux, requireGenerate)
	handler.NewSubscriptionHandler(admission, subscriptions, time.Now, logger).RegisterRoutes(mux, requireAccount)
	handler.NewUsageHandler(usage, time.Now, logger).RegisterRoutes(mux, requireAccount)
	handler.NewGenerationsHandler(queries, logger).RegisterRoutes(mux, requireAccount)

	root := middleware.Stack(
		metrics.Middleware,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		middleware.NewSecurityHeadersMiddleware(cfg.IsProduction()).Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		// A generation may use every attempt plus the backoff between them.
		WriteTimeout: time.Duration(cfg.AIMaxAttempts)*cfg.AIRequestTimeout + maxBackoff(cfg) + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newProvider builds the configured generation backend.
func newProvider(cfg *internal.Config, logger *slog.Logger) (ai.Provider, error) {
	pc := ai.ProviderConfig{
		RequestTimeout: cfg.AIRequestTimeout,
		MaxTokens:      cfg.AIMaxTokens,
	}
	switch cfg.AIProvider {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:         cfg.AnthropicAPIKey,
			Model:          cfg.AnthropicModel,
			ProviderConfig: pc,
		}, logger)
	case "gemini":
		return gemini.New(gemini.Config{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			ProviderConfig: pc,
		}, logger)
	default:
		logger.Warn("Using mock AI provider; responses are canned")
		return mock.New(logger), nil
	}
}

// maxBackoff is the total sleep between attempts when every attempt fails.
func maxBackoff(cfg *internal.Config) time.Duration {
	var total time.Duration
	for i := 1; i < cfg.AIMaxAttempts; i++ {
		total += cfg.AIRetryBaseDelay << (i - 1)
	}
	return total
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
