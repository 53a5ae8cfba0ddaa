package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker is a process-local Locker. Expired entries are reclaimed on
// the next Acquire of the same key.
type InMemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewInMemory() *InMemoryLocker {
	return &InMemoryLocker{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (*Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		return nil, ErrHeld
	}
	lease := newLease(key, "memory", m)
	m.entries[key] = memoryEntry{token: lease.Token, expiresAt: now.Add(ttl)}
	return lease, nil
}

func (m *InMemoryLocker) release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && e.token == token {
		delete(m.entries, key)
	}
	return nil
}
