// Package tracker debounces pan and zoom events into refresh cycles and keeps
// the live viewport for visibility checks.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
)

// DefaultInterval is the quiet period after the last viewport change before a
// refresh starts.
const DefaultInterval = time.Second

// ErrClosed is returned by Observe after Close.
var ErrClosed = errors.New("tracker closed")

// RefreshFunc runs one refresh cycle for a viewport. Its context is cancelled
// when the tracker closes.
type RefreshFunc func(ctx context.Context, vp domain.Viewport)

// Tracker holds the most recent viewport and triggers a refresh once the
// viewport has been stable for the debounce interval.
type Tracker struct {
	clock    clockwork.Clock
	interval time.Duration
	refresh  RefreshFunc
	logger   *slog.Logger
	metrics  *observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	live   domain.Viewport
	seen   bool
	timer  clockwork.Timer
	closed bool
}

// New creates a Tracker. A non-positive interval selects DefaultInterval.
func New(clock clockwork.Clock, interval time.Duration, refresh RefreshFunc, logger *slog.Logger, metrics *observability.Metrics) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		clock:    clock,
		interval: interval,
		refresh:  refresh,
		logger:   logger,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Observe records vp as the live viewport and restarts the debounce timer.
func (t *Tracker) Observe(vp domain.Viewport) error {
	if !vp.Valid() {
		return fmt.Errorf("observe %+v: %w", vp, domain.ErrInvalidViewport)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	t.metrics.ViewportEvents.Inc()
	t.live = vp
	t.seen = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.AfterFunc(t.interval, t.fire)
	return nil
}

// Viewport returns the live viewport. The second result is false until the
// first Observe.
func (t *Tracker) Viewport() (domain.Viewport, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live, t.seen
}

func (t *Tracker) fire() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	vp := t.live
	t.wg.Add(1)
	t.mu.Unlock()

	defer t.wg.Done()
	t.logger.Debug("viewport settled, refreshing")
	t.refresh(t.ctx, vp)
}

// Close stops the debounce timer, cancels in-flight refreshes, and waits for
// them to return.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}
