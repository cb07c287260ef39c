package daycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/moodmap/internal/domain"
)

// redisTTL outlives any calendar day in any time zone.
const redisTTL = 50 * time.Hour

// Redis keeps day records in a shared Redis instance. Keys expire once the
// day they describe is over.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps client. Keys are stored under prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to a single Redis server.
func OpenRedis(addr, password string, db int) *Redis {
	return NewRedis(redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), "moodmap:")
}

func (r *Redis) Get(ctx context.Context, key string) (*domain.DayRecord, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var rec domain.DayRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode day record %s: %w", key, err)
	}
	return &rec, nil
}

func (r *Redis) Set(ctx context.Context, key string, rec domain.DayRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode day record: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, redisTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// CheckReadiness pings the server.
func (r *Redis) CheckReadiness(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
