package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache. It backs tests and single-instance
// deployments that do not want the sqlite store on disk.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get returns the stored value when present and unexpired.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores value under key for ttl.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}
