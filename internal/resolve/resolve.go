// Package resolve fetches the contents of a set of cells from the backing
// index, escalating to parent cells on empty results until data is found or
// the root has been tried.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the fetches in flight within one round.
const DefaultConcurrency = 8

// Stats describes how a resolution went.
type Stats struct {
	Rounds      int
	Fetches     int
	Escalations int
}

// Engine resolves address sets against one collection.
type Engine struct {
	codec       domain.Codec
	fetcher     domain.Fetcher
	collection  string
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates an Engine. A concurrency below 1 falls back to DefaultConcurrency.
func New(codec domain.Codec, fetcher domain.Fetcher, collection string, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		codec:       codec,
		fetcher:     fetcher,
		collection:  collection,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// Resolve fetches every address, replacing each empty non-root result with its
// parent in the next round. Each returned element carries the address whose
// fetch produced it. Address length strictly decreases per round, so at most
// P+1 rounds run for addresses of precision P.
//
// Any fetch failure aborts the resolution and returns a *domain.FetchError;
// nothing accumulated so far is returned.
func (e *Engine) Resolve(ctx context.Context, addresses []domain.CellAddress) ([]domain.RawElement, Stats, error) {
	var stats Stats
	var result []domain.RawElement

	visited := make(map[domain.CellAddress]bool)
	pending := e.schedule(nil, visited, addresses...)

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Rounds++

		fetched, err := e.fetchRound(ctx, pending)
		stats.Fetches += len(pending)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, stats, ctxErr
			}
			e.metrics.Fetches.WithLabelValues("error").Inc()
			return nil, stats, err
		}

		var next []domain.CellAddress
		for i, addr := range pending {
			elements := fetched[i]
			if len(elements) == 0 {
				e.metrics.Fetches.WithLabelValues("empty").Inc()
				parent, ok := e.codec.Parent(addr)
				if !ok {
					continue
				}
				stats.Escalations++
				e.metrics.Escalations.Inc()
				next = e.schedule(next, visited, parent)
				continue
			}

			e.metrics.Fetches.WithLabelValues("hit").Inc()
			for _, el := range elements {
				el.QueriedAddress = addr
				result = append(result, el)
			}
		}

		e.logger.Debug("resolve round complete",
			"round", stats.Rounds,
			"fetched", len(pending),
			"escalated", len(next),
			"elements", len(result),
		)
		pending = next
	}

	return result, stats, nil
}

// fetchRound fetches all pending addresses concurrently. Results are indexed
// like pending so the output order does not depend on scheduling.
func (e *Engine) fetchRound(ctx context.Context, pending []domain.CellAddress) ([][]domain.RawElement, error) {
	results := make([][]domain.RawElement, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, addr := range pending {
		g.Go(func() error {
			elements, err := e.fetcher.Fetch(gctx, e.collection, addr)
			if err != nil {
				var fetchErr *domain.FetchError
				if errors.As(err, &fetchErr) {
					return err
				}
				return &domain.FetchError{Collection: e.collection, Address: addr, Err: err}
			}
			results[i] = elements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// schedule adds unvisited addresses to the pending list, keeping it sorted and
// free of duplicates.
func (e *Engine) schedule(pending []domain.CellAddress, visited map[domain.CellAddress]bool, addrs ...domain.CellAddress) []domain.CellAddress {
	for _, a := range addrs {
		if a == "" {
			a = domain.RootAddress
		}
		if visited[a] {
			continue
		}
		visited[a] = true
		pending = append(pending, a)
	}
	slices.Sort(pending)
	return pending
}
