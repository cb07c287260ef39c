// Package daycache stores the record of the day's submitted reading, keyed by
// calendar day. SQLite keeps it on the device, Redis shares it between
// instances, and Memory serves tests and ephemeral runs.
package daycache

import (
	"context"
	"sync"

	"github.com/couchcryptid/moodmap/internal/domain"
)

// Memory is a process-local day cache.
type Memory struct {
	mu   sync.RWMutex
	recs map[string]domain.DayRecord
}

// NewMemory creates an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{recs: make(map[string]domain.DayRecord)}
}

func (m *Memory) Get(_ context.Context, key string) (*domain.DayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) Set(_ context.Context, key string, rec domain.DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[key] = rec
	return nil
}

func (m *Memory) Close() error { return nil }
