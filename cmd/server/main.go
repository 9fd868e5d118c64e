package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/ledgercheck/internal/adapter/http"
	"github.com/iho/ledgercheck/internal/adapter/http/handler"
	"github.com/iho/ledgercheck/internal/adapter/http/middleware"
	"github.com/iho/ledgercheck/internal/adapter/repository/jsonfile"
	"github.com/iho/ledgercheck/internal/infrastructure/config"
	"github.com/iho/ledgercheck/internal/infrastructure/idgen"
	"github.com/iho/ledgercheck/internal/infrastructure/logger"
	"github.com/iho/ledgercheck/internal/infrastructure/metrics"
	"github.com/iho/ledgercheck/internal/usecase"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		recorder       usecase.Recorder
		observer       middleware.HTTPObserver
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		m := metrics.New(prometheus.DefaultRegisterer)
		recorder, observer = m, m
		metricsHandler = promhttp.Handler()
	}

	ids := idgen.NewULIDGenerator()
	store := jsonfile.NewStore(cfg.LedgerFile, ids, log)

	ledger, err := store.Load(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("path", store.Path()).Int("version", ledger.Version).Msg("ledger loaded")

	checker := usecase.NewConsistencyUseCase(
		usecase.DefaultChecks(usecase.CheckConfig{HomeCurrencies: cfg.HomeCurrencies}),
		ids,
		recorder,
		log,
	)
	if _, err := checker.Heal(ctx, ledger); err != nil {
		return fmt.Errorf("heal ledger: %w", err)
	}

	session := usecase.NewLedgerSession(ledger, checker, store, cfg.SaveAfterFix)
	limiter := middleware.NewRateLimiter(cfg.FixRateLimit, cfg.FixRateBurst)
	go cleanupLimiter(ctx, limiter, log)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		IssueHandler:   handler.NewIssueHandler(session),
		HealthHandler:  handler.NewHealthHandler(fileProbe(store.Path())),
		Logger:         log,
		Metrics:        observer,
		MetricsHandler: metricsHandler,
		FixLimiter:     limiter,
	})

	server := newServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// fileProbe reports whether the ledger file is still readable.
func fileProbe(path string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		return f.Close()
	}
}

func cleanupLimiter(ctx context.Context, limiter *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(time.Hour); n > 0 {
				log.Debug().Int("clients", n).Msg("rate limiter cleaned up")
			}
		}
	}
}
