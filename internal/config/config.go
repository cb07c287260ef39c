package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // DAY_CACHE_TIMEZONE must resolve in minimal containers

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/moodmap/internal/domain"
)

// Submit transports.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
)

// Day cache backends.
const (
	DayCacheSQLite = "sqlite"
	DayCacheRedis  = "redis"
	DayCacheMemory = "memory"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Index store.
	IndexURL          string
	IndexCollection   string
	SubmitCollections []string
	IndexTimeout      time.Duration

	// Refresh cycle.
	CodecPrecision   int
	FetchConcurrency int
	FetchCacheSize   int
	FetchCacheTTL    time.Duration
	DebounceInterval time.Duration
	MetricSchema     domain.MetricSchema

	// Submission.
	JitterRadius     float64
	SubmitTransport  string
	KafkaBrokers     []string
	KafkaSubmitTopic string

	// Day cache.
	DayCache         string
	DayCachePath     string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	DayCacheLocation *time.Location
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	indexTimeout, err := parseDuration("INDEX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("FETCH_CACHE_TTL", "30s")
	if err != nil {
		return nil, err
	}
	debounce, err := parseDuration("DEBOUNCE_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}

	precision, err := parseInt("CODEC_PRECISION", 12, 1, 12)
	if err != nil {
		return nil, err
	}
	concurrency, err := parseInt("FETCH_CONCURRENCY", 8, 1, 256)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("FETCH_CACHE_SIZE", 0, 0, 1_000_000)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseInt("REDIS_DB", 0, 0, 15)
	if err != nil {
		return nil, err
	}

	radius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("JITTER_RADIUS_METERS", "30"), 64)
	if err != nil || radius < 0 {
		return nil, errors.New("invalid JITTER_RADIUS_METERS")
	}

	schema, err := domain.ParseMetricSchema(sharedcfg.EnvOrDefault("METRIC_SCHEMA", "mood,lat,lng"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRIC_SCHEMA: %w", err)
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("DAY_CACHE_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAY_CACHE_TIMEZONE: %w", err)
	}

	collection := sharedcfg.EnvOrDefault("INDEX_COLLECTION", "moods")

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		IndexURL:          sharedcfg.EnvOrDefault("INDEX_URL", "http://localhost:21000"),
		IndexCollection:   collection,
		SubmitCollections: splitList(sharedcfg.EnvOrDefault("SUBMIT_COLLECTIONS", collection)),
		IndexTimeout:      indexTimeout,

		CodecPrecision:   precision,
		FetchConcurrency: concurrency,
		FetchCacheSize:   cacheSize,
		FetchCacheTTL:    cacheTTL,
		DebounceInterval: debounce,
		MetricSchema:     schema,

		JitterRadius:     radius,
		SubmitTransport:  strings.ToLower(sharedcfg.EnvOrDefault("SUBMIT_TRANSPORT", TransportHTTP)),
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSubmitTopic: sharedcfg.EnvOrDefault("KAFKA_SUBMIT_TOPIC", "mood-readings"),

		DayCache:         strings.ToLower(sharedcfg.EnvOrDefault("DAY_CACHE", DayCacheSQLite)),
		DayCachePath:     sharedcfg.EnvOrDefault("DAY_CACHE_PATH", "moodmap.db"),
		RedisAddr:        sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		DayCacheLocation: loc,
	}

	if cfg.IndexURL == "" {
		return nil, errors.New("INDEX_URL is required")
	}
	if cfg.IndexCollection == "" {
		return nil, errors.New("INDEX_COLLECTION is required")
	}
	if len(cfg.SubmitCollections) == 0 {
		return nil, errors.New("SUBMIT_COLLECTIONS is required")
	}

	switch cfg.SubmitTransport {
	case TransportHTTP:
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when SUBMIT_TRANSPORT is kafka")
		}
		if cfg.KafkaSubmitTopic == "" {
			return nil, errors.New("KAFKA_SUBMIT_TOPIC is required when SUBMIT_TRANSPORT is kafka")
		}
	default:
		return nil, fmt.Errorf("invalid SUBMIT_TRANSPORT %q: want http or kafka", cfg.SubmitTransport)
	}

	switch cfg.DayCache {
	case DayCacheSQLite:
		if cfg.DayCachePath == "" {
			return nil, errors.New("DAY_CACHE_PATH is required when DAY_CACHE is sqlite")
		}
	case DayCacheRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required when DAY_CACHE is redis")
		}
	case DayCacheMemory:
	default:
		return nil, fmt.Errorf("invalid DAY_CACHE %q: want sqlite, redis or memory", cfg.DayCache)
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
