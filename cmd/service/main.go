// cmd/service/main.go
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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"repo-browser/internal/api"
	"repo-browser/internal/browser"
	"repo-browser/internal/cache"
	"repo-browser/internal/config"
	"repo-browser/internal/github"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "org", cfg.GithubOrg, "list_mode", cfg.ListMode, "cache_backend", cfg.CacheBackend)

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize the cache store
	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 5. Initialize application components
	ghClient, err := github.NewClient(cfg.GithubAPIURL, cfg.GithubOrg, cfg.GithubToken, logger)
	if err != nil {
		return fmt.Errorf("failed to create github client: %w", err)
	}
	mode, err := browser.ParseListMode(cfg.ListMode)
	if err != nil {
		return err
	}
	svc := browser.NewService(ghClient, logger)
	list := browser.NewListSession(svc, cache.New(store, logger), browser.ListOptions{Mode: mode, PageSize: cfg.PageSize}, logger)
	detail := browser.NewDetailSession(svc, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(list, detail, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Start the HTTP server in a separate goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Exiting.")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// newStore returns the configured cache backend and a function releasing it.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func(), error) {
	if cfg.CacheBackend != config.CacheBackendPostgres {
		return cache.NewMemoryStore(), func() {}, nil
	}

	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	if err := runMigrations(cfg.MigrationsPath, cfg.DBURL); err != nil {
		dbpool.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	return cache.NewPostgresStore(dbpool), dbpool.Close, nil
}

func runMigrations(source, dbURL string) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
