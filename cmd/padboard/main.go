package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryanbastic/padboard/internal/api"
	"github.com/ryanbastic/padboard/internal/board"
	"github.com/ryanbastic/padboard/internal/circuitbreaker"
	"github.com/ryanbastic/padboard/internal/config"
	"github.com/ryanbastic/padboard/internal/metrics"
	"github.com/ryanbastic/padboard/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	opts, err := cfg.BoardOptions()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var backend storage.Store
	switch cfg.StoreBackend {
	case "memory":
		backend = storage.NewMemoryStore(opts.StoreOptions())
		logger.Warn("using in-memory store, data is lost on exit")
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		if err := storage.RunMigrations(ctx, pool, opts.StoreOptions()); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations complete", "shape_policy", cfg.ShapePolicy)

		prometheus.MustRegister(metrics.NewPoolCollector(pool))
		backend = storage.NewPostgresStore(pool, storage.PostgresConfig{
			QueryTimeout: cfg.QueryTimeout,
			RetryMax:     cfg.StoreRetryMax,
			RetryBackoff: cfg.StoreRetryBackoff,
		}, logger)
	}

	breaker := circuitbreaker.New(cfg.BreakerMaxFailures, cfg.BreakerResetTimeout,
		circuitbreaker.WithFailureFilter(storage.IsBackendFailure),
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			metrics.SetBreakerState(int(to))
			logger.Warn("store circuit breaker state changed", "from", from.String(), "to", to.String())
		}),
	)
	store := storage.NewGuardedStore(backend, breaker)
	backends := map[string]api.Pinger{cfg.StoreBackend: store}

	svc := board.NewService(store, opts, logger)
	logger.Info("board service ready",
		"backend", cfg.StoreBackend,
		"reference_policy", cfg.ReferencePolicy,
		"shape_policy", cfg.ShapePolicy,
		"field_mode", cfg.FieldMode,
	)

	// Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(logger, svc, backends),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	cancel()

	logger.Info("shutdown complete")
}
