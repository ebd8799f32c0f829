package repository

import (
	"context"
	"sync"
	"time"
)

const memorySweepInterval = 5 * time.Minute

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is the in-process CacheRepository used when Redis is off.
// Expired entries are swept periodically and on writes once per interval.
type MemoryCache struct {
	mu        sync.RWMutex
	data      map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
	stopSweep chan struct{}
	stopOnce  sync.Once
}

func NewMemoryCache() *MemoryCache {
	m := &MemoryCache{
		data:      make(map[string]memoryEntry),
		now:       time.Now,
		stopSweep: make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

func (m *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(memorySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.deleteExpiredLocked(m.now())
			m.mu.Unlock()
		case <-m.stopSweep:
			return
		}
	}
}

// deleteExpiredLocked drops every expired entry. m.mu must be held.
func (m *MemoryCache) deleteExpiredLocked(now time.Time) {
	for key, entry := range m.data {
		if !entry.expires.IsZero() && now.After(entry.expires) {
			delete(m.data, key)
		}
	}
	m.nextSweep = now.Add(memorySweepInterval)
}

// Close stops the background sweep. The cache stays usable.
func (m *MemoryCache) Close() error {
	m.stopOnce.Do(func() { close(m.stopSweep) })
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	now := m.now()
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !entry.expires.IsZero() && now.After(entry.expires) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.After(m.nextSweep) {
		m.deleteExpiredLocked(now)
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	m.data[key] = entry
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
