package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local CounterStore. Suitable for single-instance
// deployments and tests; multi-instance deployments should use RedisStore so
// all replicas share one set of counters.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

type memoryCounter struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

func (m *MemoryStore) IncrementIfBelow(ctx context.Context, toolSlug, requesterKey string, period Period, ceiling int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	key := counterKey(toolSlug, requesterKey, period)

	c, ok := m.counters[key]
	if !ok || !now.Before(c.resetAt) {
		// Absent or expired: start a fresh window.
		if ceiling < 1 {
			return 0, false, nil
		}
		m.counters[key] = &memoryCounter{count: 1, resetAt: period.ResetTime(now)}
		return 1, true, nil
	}

	if c.count >= ceiling {
		return c.count, false, nil
	}

	c.count++
	return c.count, true, nil
}

func (m *MemoryStore) Count(ctx context.Context, toolSlug, requesterKey string, period Period) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[counterKey(toolSlug, requesterKey, period)]
	if !ok || !m.now().Before(c.resetAt) {
		return 0, nil
	}
	return c.count, nil
}

func (m *MemoryStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for key, c := range m.counters {
		if !now.Before(c.resetAt) {
			delete(m.counters, key)
			deleted++
		}
	}
	return deleted, nil
}
