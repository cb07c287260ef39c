// Package http serves the map session over HTTP: health, readiness, and
// metrics for operators, and a JSON API for map clients.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/submit"
)

// MapSession is the session the API drives.
type MapSession interface {
	sharedobs.ReadinessChecker
	Refresh(ctx context.Context, vp domain.Viewport) (*domain.Snapshot, error)
	Snapshot() (*domain.Snapshot, bool)
	LastError() error
	Submit(ctx context.Context, r domain.Reading) (submit.Result, error)
}

// ViewportObserver receives pan and zoom events.
type ViewportObserver interface {
	Observe(vp domain.Viewport) error
}

// Server exposes the health, readiness, metrics, and map API endpoints.
type Server struct {
	httpServer *http.Server
	session    MapSession
	viewport   ViewportObserver
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 routes.
func NewServer(addr string, session MapSession, viewport ViewportObserver, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		session:  session,
		viewport: viewport,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(session))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/viewport", s.handleViewport)
	mux.HandleFunc("GET /api/v1/view", s.handleView)
	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /api/v1/readings", s.handleReading)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
