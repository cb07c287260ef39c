// Package session owns the state of one map session: the published snapshot,
// the refresh generation, and the handles to the index. It runs refresh cycles
// (plan, resolve, aggregate) and the daily submission.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/couchcryptid/moodmap/internal/aggregate"
	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
	"github.com/couchcryptid/moodmap/internal/planner"
	"github.com/couchcryptid/moodmap/internal/resolve"
	"github.com/couchcryptid/moodmap/internal/submit"
)

// ViewportSource reports the viewport as the user sees it right now.
type ViewportSource interface {
	Viewport() (domain.Viewport, bool)
}

// DailySubmitter writes at most one reading per day.
type DailySubmitter interface {
	SubmitDaily(ctx context.Context, r domain.Reading) (submit.Result, error)
}

// ReadinessChecker reports whether a backing dependency can serve requests.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dependency is a named backing store checked for readiness.
type Dependency struct {
	Name  string
	Check ReadinessChecker
}

// Options wires a Session to the index.
type Options struct {
	Codec       domain.Codec
	Fetcher     domain.Fetcher
	Collection  string
	Concurrency int
	Schema      domain.MetricSchema
	// Submitter is optional; without it Submit fails.
	Submitter DailySubmitter
	// Dependencies must all be ready for the session to be ready.
	Dependencies []Dependency
}

// Session runs refresh cycles and publishes their snapshots. Only the most
// recently started cycle may publish; a cycle superseded by a newer one is
// cancelled and reports domain.ErrStaleCycle.
type Session struct {
	id         string
	planner    *planner.Planner
	engine     *resolve.Engine
	aggregator *aggregate.Aggregator
	submitter  DailySubmitter
	deps       []Dependency
	logger     *slog.Logger
	metrics    *observability.Metrics

	snapshot atomic.Pointer[domain.Snapshot]

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	lastErr    error
	closed     bool
}

// New creates a Session.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Session {
	if opts.Schema == (domain.MetricSchema{}) {
		opts.Schema = domain.DefaultMetricSchema
	}
	id := uuid.NewString()
	logger = logger.With("session_id", id)
	return &Session{
		id:         id,
		planner:    planner.New(opts.Codec),
		engine:     resolve.New(opts.Codec, opts.Fetcher, opts.Collection, opts.Concurrency, logger, metrics),
		aggregator: aggregate.New(opts.Codec, opts.Schema, logger, metrics),
		submitter:  opts.Submitter,
		deps:       opts.Dependencies,
		logger:     logger,
		metrics:    metrics,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Refresh runs one cycle for vp and publishes its snapshot. Visibility and
// the score are judged against vp. Starting a cycle cancels the one before
// it. On failure the previous snapshot stays published and the error is kept
// for LastError.
func (s *Session) Refresh(ctx context.Context, vp domain.Viewport) (*domain.Snapshot, error) {
	return s.refresh(ctx, vp, nil)
}

// RefreshTracked runs a cycle started from src's settled viewport vp. The
// viewport src reports when resolution finishes decides visibility, since the
// user may have moved on while the index was queried. Without a viewport from
// src, vp is used.
func (s *Session) RefreshTracked(ctx context.Context, vp domain.Viewport, src ViewportSource) (*domain.Snapshot, error) {
	return s.refresh(ctx, vp, src)
}

func (s *Session) refresh(ctx context.Context, vp domain.Viewport, src ViewportSource) (*domain.Snapshot, error) {
	if !vp.Valid() {
		return nil, fmt.Errorf("refresh %+v: %w", vp, domain.ErrInvalidViewport)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	start := domain.Now()
	log := s.logger.With("generation", gen)
	log.Debug("refresh started")

	addrs, err := s.planner.Plan(vp)
	if err != nil {
		return nil, s.fail(log, gen, err)
	}

	elements, stats, err := s.engine.Resolve(ctx, addrs)
	if err != nil {
		return nil, s.fail(log, gen, err)
	}
	s.metrics.ResolveRounds.Observe(float64(stats.Rounds))

	live := liveViewport(src, vp)
	res := s.aggregator.Aggregate(elements, live)
	snap := &domain.Snapshot{
		Generation: gen,
		Viewport:   live,
		Markers:    res.Markers,
		Areas:      res.Areas,
		Score:      res.Score,
		CreatedAt:  domain.Now(),
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, s.stale(log)
	}
	s.snapshot.Store(snap)
	s.lastErr = nil
	s.mu.Unlock()

	s.metrics.RefreshCycles.WithLabelValues("success").Inc()
	s.metrics.RefreshDuration.Observe(domain.Now().Sub(start).Seconds())
	s.metrics.ViewportScore.Set(res.Score)
	log.Debug("refresh published",
		"addresses", len(addrs),
		"rounds", stats.Rounds,
		"fetches", stats.Fetches,
		"markers", len(res.Markers),
		"areas", len(res.Areas),
		"score", res.Score,
	)
	return snap, nil
}

func liveViewport(src ViewportSource, fallback domain.Viewport) domain.Viewport {
	if src == nil {
		return fallback
	}
	if vp, ok := src.Viewport(); ok {
		return vp
	}
	return fallback
}

// fail records err unless the cycle has been superseded, in which case the
// failure is just the cancellation and the cycle is reported stale.
func (s *Session) fail(log *slog.Logger, gen uint64, err error) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return s.stale(log)
	}
	s.lastErr = err
	s.mu.Unlock()

	s.metrics.RefreshCycles.WithLabelValues("error").Inc()
	log.Warn("refresh failed, keeping previous snapshot", "error", err)
	return err
}

func (s *Session) stale(log *slog.Logger) error {
	s.metrics.RefreshCycles.WithLabelValues("stale").Inc()
	log.Debug("refresh superseded")
	return domain.ErrStaleCycle
}

// Snapshot returns the published snapshot, or false if no cycle has
// succeeded yet.
func (s *Session) Snapshot() (*domain.Snapshot, bool) {
	snap := s.snapshot.Load()
	return snap, snap != nil
}

// LastError is the failure of the most recent cycle, or nil if it succeeded.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit runs the daily submission for r.
func (s *Session) Submit(ctx context.Context, r domain.Reading) (submit.Result, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return submit.Result{}, domain.ErrSessionClosed
	}
	if s.submitter == nil {
		return submit.Result{}, errors.New("submission is not configured")
	}
	return s.submitter.SubmitDaily(ctx, r)
}

// CheckReadiness returns nil once a snapshot has been published and every
// dependency reports ready.
func (s *Session) CheckReadiness(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return domain.ErrSessionClosed
	}
	for _, d := range s.deps {
		if err := d.Check.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
	}
	if s.snapshot.Load() == nil {
		return errors.New("no snapshot published yet")
	}
	return nil
}

// Close cancels the running cycle. Later refreshes and submissions fail with
// domain.ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("session closed", "generation", s.generation)
	return nil
}
