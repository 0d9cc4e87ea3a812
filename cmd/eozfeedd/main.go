// Command eozfeedd serves the EOZ reconciliation feed over HTTP.
// It reads the task-tracker snapshot database and exposes the derived
// task and member views, recomputed on every request.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/regsync/eozfeed/config"
	"github.com/regsync/eozfeed/feed"
	"github.com/regsync/eozfeed/internal/version"
	"github.com/regsync/eozfeed/server"
	"github.com/regsync/eozfeed/tracker"
)

var configPath = flag.String("config", "eozfeed.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	logger.Info("starting eozfeedd",
		"version", version.Version,
		"commit", version.Commit,
	)

	store, err := tracker.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open tracker store %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	srv := server.New(*cfg, version.Version, logger)
	srv.SetStore(store)
	srv.SetFeed(feed.NewBuilder(store, logger))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("server stop error", "error", err)
	}
	logger.Info("shutdown complete")
}

// logLevel parses a config log level, defaulting to info.
func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
