package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/live-poll/catalog"
	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/middleware"
	"github.com/danielhkuo/live-poll/realtime"
	"github.com/danielhkuo/live-poll/router"
	"github.com/danielhkuo/live-poll/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the vote store (schema is created for SQL backends)
	votes, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer votes.Close()
	slog.Info("Vote store ready", "type", cfg.DatabaseType)

	// Question catalog
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			return err
		}
	}
	slog.Info("Catalog loaded", "questions", len(cat.Questions()), "strict", cfg.StrictCatalog)

	retry := realtime.RetryPolicy{
		Timeout: cfg.StoreTimeout,
		Retries: cfg.StoreRetries,
		Backoff: cfg.StoreRetryBackoff,
	}
	coord := realtime.NewCoordinator(votes, realtime.NewRegistry(), retry, slog.Default())
	defer coord.Close()

	// Create router
	mux := router.NewRouter(coord, cat, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "origin", cfg.AllowedOrigin)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Wait for Ctrl-C signal or a failed listener
		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Websocket connections are hijacked and not tracked by Shutdown
		err := server.Shutdown(shutdownCtx)
		server.Close()
		return err
	})

	return g.Wait()
}
