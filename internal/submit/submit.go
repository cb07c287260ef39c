// Package submit implements the once-per-day reading submission: jitter the
// location, encode it, write it to every configured collection, and remember
// the day.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
)

// DefaultRadius is the jitter radius in meters.
const DefaultRadius = 30.0

// Options configures a Submitter. Zero values select the defaults.
type Options struct {
	// Collections receive every reading; at least one is required.
	Collections []string
	Schema      domain.MetricSchema
	// Radius is the jitter radius in meters. Negative disables jitter.
	Radius float64
	// Location defines the calendar day. Defaults to time.Local.
	Location *time.Location
	Rand     *rand.Rand
}

// Result is the outcome of a daily submission.
type Result struct {
	Record domain.DayRecord `json:"record"`
	// Skipped is true when a reading was already submitted today and nothing
	// was written.
	Skipped bool `json:"skipped"`
}

// Submitter writes at most one reading per calendar day.
type Submitter struct {
	codec   domain.Codec
	writer  domain.IndexWriter
	cache   domain.DayCache
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	mu sync.Mutex // serializes submissions and guards opts.Rand
}

// New creates a Submitter.
func New(codec domain.Codec, writer domain.IndexWriter, cache domain.DayCache, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Submitter, error) {
	if len(opts.Collections) == 0 {
		return nil, errors.New("submit: at least one collection is required")
	}
	if opts.Schema == (domain.MetricSchema{}) {
		opts.Schema = domain.DefaultMetricSchema
	}
	if opts.Radius == 0 {
		opts.Radius = DefaultRadius
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Submitter{
		codec:   codec,
		writer:  writer,
		cache:   cache,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// SubmitDaily writes r unless a reading was already submitted today. The day
// is only recorded once every collection accepted the reading, so a failed
// attempt can be retried.
func (s *Submitter) SubmitDaily(ctx context.Context, r domain.Reading) (Result, error) {
	if !r.Valid() {
		return Result{}, fmt.Errorf("mood %d at %v: %w", r.Mood, r.Location, domain.ErrInvalidReading)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Now()
	key := domain.DayKey(now, s.opts.Location)

	prev, err := s.cache.Get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("read day cache %s: %w", key, err)
	}
	if prev != nil {
		s.metrics.Submissions.WithLabelValues("skipped").Inc()
		s.logger.Debug("reading already submitted today", "day", prev.Date)
		return Result{Record: *prev, Skipped: true}, nil
	}

	loc := Jitter(r.Location, s.opts.Radius, s.opts.Rand)
	addr, err := s.codec.Encode(loc, s.codec.MaxPrecision())
	if err != nil {
		return Result{}, err
	}

	rec := domain.DayRecord{
		Date:        now.In(s.opts.Location).Format(time.DateOnly),
		Mood:        r.Mood,
		Location:    loc,
		Addresses:   make([]domain.CellAddress, 0, len(s.opts.Collections)),
		SubmittedAt: now,
	}

	for _, c := range s.opts.Collections {
		sub := domain.Submission{
			ID:         uuid.NewString(),
			Collection: c,
			Parent:     domain.RootAddress,
			Address:    addr,
			Point:      loc,
			Metrics:    s.opts.Schema.Vector(r.Mood, loc),
			Payload:    strconv.Itoa(r.Mood),
		}
		if err := s.writer.Submit(ctx, sub); err != nil {
			s.metrics.Submissions.WithLabelValues("error").Inc()
			s.logger.Error("submission failed", "collection", c, "address", addr, "error", err)
			var se *domain.SubmissionError
			if errors.As(err, &se) {
				return Result{}, err
			}
			return Result{}, &domain.SubmissionError{Collection: c, Address: addr, Err: err}
		}
		rec.Addresses = append(rec.Addresses, addr)
	}

	if err := s.cache.Set(ctx, key, rec); err != nil {
		// The reading is stored; only the day marker is missing.
		s.logger.Warn("day cache write failed", "day", key, "error", err)
		s.metrics.Submissions.WithLabelValues("success").Inc()
		return Result{Record: rec}, fmt.Errorf("write day cache %s: %w", key, err)
	}

	s.metrics.Submissions.WithLabelValues("success").Inc()
	s.logger.Info("reading submitted", "address", addr, "collections", len(s.opts.Collections))
	return Result{Record: rec}, nil
}
