// Package app assembles a map session from configuration: codec, index
// client, optional fetch cache, submit transport, and day cache.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/moodmap/internal/adapter/daycache"
	"github.com/couchcryptid/moodmap/internal/adapter/indexus"
	kafkaadapter "github.com/couchcryptid/moodmap/internal/adapter/kafka"
	"github.com/couchcryptid/moodmap/internal/codec"
	"github.com/couchcryptid/moodmap/internal/config"
	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
	"github.com/couchcryptid/moodmap/internal/session"
	"github.com/couchcryptid/moodmap/internal/submit"
)

// App is a wired session plus the handles it owns.
type App struct {
	Codec   *codec.Geohash
	Session *session.Session

	closers []namedCloser
	logger  *slog.Logger
}

type namedCloser struct {
	name string
	io.Closer
}

// Build wires an App from cfg. The caller must Close it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	gh, err := codec.NewGeohash(cfg.CodecPrecision)
	if err != nil {
		return nil, err
	}
	a := &App{Codec: gh, logger: logger}

	client := indexus.NewClient(cfg.IndexURL, cfg.IndexTimeout, logger)

	var fetcher domain.Fetcher = client
	if cfg.FetchCacheSize > 0 {
		fetcher = indexus.NewCachedFetcher(client, cfg.FetchCacheSize, cfg.FetchCacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("fetch cache enabled", "size", cfg.FetchCacheSize, "ttl", cfg.FetchCacheTTL)
	}

	var writer domain.IndexWriter = client
	if cfg.SubmitTransport == config.TransportKafka {
		kw := kafkaadapter.NewWriter(cfg, logger)
		a.closers = append(a.closers, namedCloser{"kafka writer", kw})
		writer = kw
		logger.Info("submitting via kafka", "topic", cfg.KafkaSubmitTopic, "brokers", cfg.KafkaBrokers)
	}

	days, err := openDayCache(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, namedCloser{"day cache", days})

	radius := cfg.JitterRadius
	if radius == 0 {
		radius = -1 // zero means no jitter, not the default radius
	}
	submitter, err := submit.New(gh, writer, days, submit.Options{
		Collections: cfg.SubmitCollections,
		Schema:      cfg.MetricSchema,
		Radius:      radius,
		Location:    cfg.DayCacheLocation,
	}, logger, metrics)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var deps []session.Dependency
	if rc, ok := days.(session.ReadinessChecker); ok {
		deps = append(deps, session.Dependency{Name: "day cache", Check: rc})
	}

	a.Session = session.New(session.Options{
		Codec:        gh,
		Fetcher:      fetcher,
		Collection:   cfg.IndexCollection,
		Concurrency:  cfg.FetchConcurrency,
		Schema:       cfg.MetricSchema,
		Submitter:    submitter,
		Dependencies: deps,
	}, logger, metrics)

	return a, nil
}

type dayCache interface {
	domain.DayCache
	io.Closer
}

func openDayCache(ctx context.Context, cfg *config.Config) (dayCache, error) {
	switch cfg.DayCache {
	case config.DayCacheSQLite:
		return daycache.OpenSQLite(ctx, cfg.DayCachePath)
	case config.DayCacheRedis:
		return daycache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case config.DayCacheMemory:
		return daycache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown day cache %q", cfg.DayCache)
	}
}

// Close closes the session and every handle, in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	if a.Session != nil {
		errs = append(errs, a.Session.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.logger.Error("close failed", "handle", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
