package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/moodmap/internal/adapter/http"
	"github.com/couchcryptid/moodmap/internal/app"
	"github.com/couchcryptid/moodmap/internal/config"
	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
	"github.com/couchcryptid/moodmap/internal/tracker"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to build session", "error", err)
		os.Exit(1)
	}
	sess := a.Session
	logger.Info("session started",
		"session_id", sess.ID(),
		"index", cfg.IndexURL,
		"collection", cfg.IndexCollection,
		"precision", cfg.CodecPrecision,
	)

	// Refresh once the viewport has settled; visibility follows the tracker.
	var trk *tracker.Tracker
	trk = tracker.New(clockwork.NewRealClock(), cfg.DebounceInterval, func(ctx context.Context, vp domain.Viewport) {
		if _, err := sess.RefreshTracked(ctx, vp, trk); err != nil && !errors.Is(err, domain.ErrStaleCycle) {
			logger.Debug("debounced refresh failed", "error", err)
		}
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, trk, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	trk.Close()
	if err := a.Close(); err != nil {
		logger.Error("session close error", "error", err)
	}

	logger.Info("shutdown complete")
}
