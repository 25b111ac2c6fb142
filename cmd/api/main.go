package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josh-kwaku/ledger-mapping-engine/api"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/config"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/handler"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/matching"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/middleware"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/repository"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/service"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/suggest"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("ledger-mapping-api", cfg.LogLevel, cfg.AppEnv)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		ConnectAttempts:  cfg.DBConnectAttempts,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	synonyms := matching.DefaultSynonyms()
	if cfg.SynonymsFile != "" {
		synonyms, err = matching.LoadSynonymsFile(cfg.SynonymsFile)
		if err != nil {
			return fmt.Errorf("load synonyms: %w", err)
		}
		slog.Info("synonym table loaded", "path", cfg.SynonymsFile, "keys", len(synonyms))
	}
	generator := suggest.NewGenerator(matching.NewEngine(matching.NewKeywordMatcher(synonyms)))

	mappingSvc := service.NewMappingService(
		repository.NewPeriodRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewTaxonomyRepository(db),
		repository.NewMappingRepository(db),
		generator,
		db,
		cfg,
	)

	idempotencyRepo := repository.NewIdempotencyRepository(db)
	go cleanIdempotencyCache(ctx, idempotencyRepo, time.Hour)

	mappingHandler := handler.NewMappingHandler(mappingSvc)
	taxonomyHandler := handler.NewTaxonomyHandler(mappingSvc)
	healthHandler := handler.NewHealthHandler(db, version)

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.Auth(cfg.JWTSecret)(
			middleware.PeriodScope(
				middleware.Idempotency(idempotencyRepo, time.Duration(cfg.IdempotencyTTLH)*time.Hour)(h),
			),
		)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.OpenAPI))

	mux.Handle("GET /api/v1/periods/{period}/suggestions", protected(mappingHandler.Suggestions))
	mux.Handle("GET /api/v1/periods/{period}/mappings", protected(mappingHandler.List))
	mux.Handle("POST /api/v1/periods/{period}/mappings", protected(mappingHandler.Apply))
	mux.Handle("POST /api/v1/periods/{period}/mappings/bulk", protected(mappingHandler.BulkApply))
	mux.Handle("GET /api/v1/periods/{period}/mapping-statistics", protected(mappingHandler.PeriodStatistics))
	mux.Handle("GET /api/v1/mapping-statistics", protected(mappingHandler.GlobalStatistics))
	mux.Handle("GET /api/v1/taxonomy", protected(taxonomyHandler.List))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.Tracing(middleware.Logging(middleware.Recovery(mux))),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func cleanIdempotencyCache(ctx context.Context, repo *repository.IdempotencyRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.CleanExpired(ctx)
			if err != nil {
				slog.Warn("idempotency cache cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("idempotency cache cleaned", "removed", n)
			}
		}
	}
}
