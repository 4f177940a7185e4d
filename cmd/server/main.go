package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jomardyan/ToolBox/internal/config"
	"github.com/jomardyan/ToolBox/internal/core"
	"github.com/jomardyan/ToolBox/internal/history"
	"github.com/jomardyan/ToolBox/internal/logging"
	"github.com/jomardyan/ToolBox/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())
	slog.Info("formats registered", "count", len(core.Formats()))

	ctx := context.Background()

	store, closeStore, err := openHistory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open history store", "backend", cfg.HistoryBackend(), "error", err)
		os.Exit(1)
	}
	defer closeStore()

	server := web.NewServer(cfg, store)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openHistory picks the history store for cfg. The returned func releases
// any database pool.
func openHistory(ctx context.Context, cfg *config.Config) (history.Store, func(), error) {
	backend := cfg.HistoryBackend()
	switch backend {
	case "disabled":
		slog.Info("history disabled")
		return history.NopStore{}, func() {}, nil

	case "postgres":
		pool, err := history.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}

		store := history.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		slog.Info("history kept in memory", "capacity", cfg.History.MemoryCapacity)
		return history.NewMemoryStore(cfg.History.MemoryCapacity), func() {}, nil
	}
}
