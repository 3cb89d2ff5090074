package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pkordes/map-collection/internal/assistant"
	"github.com/pkordes/map-collection/internal/auth"
	"github.com/pkordes/map-collection/internal/cache"
	"github.com/pkordes/map-collection/internal/handler"
	"github.com/pkordes/map-collection/internal/repo"
	"github.com/pkordes/map-collection/internal/service"
	"github.com/pkordes/map-collection/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the ping below does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	logger.Info("database connection established")

	// --- Local cache ------------------------------------------------------
	kv, err := cache.Open(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		return err
	}
	defer kv.Close()

	// --- Auth -------------------------------------------------------------
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		return err
	}

	// --- Photos -----------------------------------------------------------
	media := storage.NewStore(
		afero.NewBasePathFs(afero.NewOsFs(), cfg.MediaDir),
		cfg.PublicBaseURL+"/media",
	)

	// --- Assistant --------------------------------------------------------
	// Without an API key the client stays disabled and answers 503.
	var gen assistant.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := assistant.NewGenAIGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create assistant", "error", err)
			return err
		}
		gen = g
	} else {
		logger.Warn("GEMINI_API_KEY not set; assistant disabled")
	}
	asker := assistant.NewClient(gen, assistant.DefaultBreakerConfig())

	// --- Services ---------------------------------------------------------
	users := repo.NewUserRepo(pool)
	posts := repo.NewPostRepo(pool)
	spots := repo.NewSpotRepo(pool)
	trips := repo.NewTripRepo(pool)
	stops := repo.NewTripStopRepo(pool)

	stopSvc := service.NewTripStopService(trips, stops, media)
	srv := handler.NewServer(handler.Services{
		Users:     service.NewUserService(users, posts, auth.BcryptHasher{}, tokens, media, kv),
		Posts:     service.NewPostService(posts, users, media),
		Spots:     service.NewSpotService(posts, spots, trips, stops, media),
		Trips:     service.NewTripService(trips, stops, users, media),
		Stops:     stopSvc,
		Export:    service.NewExportService(trips, stops),
		Feed:      service.NewFeedService(users, posts),
		Assistant: service.NewAssistantService(asker, stopSvc),
		Media:     media,
		Tokens:    tokens,
	}, handler.Options{
		Logger:             logger,
		CORSOrigins:        cfg.CORSOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ping:               pool.Ping,
	})

	// --- HTTP server ------------------------------------------------------
	// Uploads and generation calls can be slow, so the write timeout is
	// longer than a plain CRUD API would need.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// Give in-flight requests up to 15 seconds to complete.
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
