package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Records vanish on restart,
// so it is meant for development and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

// NewMemoryStore creates a store whose records live for ttl after their last
// write. A janitor sweeps expired records every sweep interval; a zero sweep
// disables it and expiry is enforced on read only.
func NewMemoryStore(ttl, sweep time.Duration) *MemoryStore {
	return newMemoryStore(ttl, sweep, time.Now)
}

func newMemoryStore(ttl, sweep time.Duration, now func() time.Time) *MemoryStore {
	m := &MemoryStore{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   now,
		stop:  make(chan struct{}),
	}
	if sweep > 0 {
		go m.janitor(sweep)
	}
	return m
}

func (m *MemoryStore) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryStore) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, id)
		}
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.items[id]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return e.session.clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, id string, s *Session) error {
	m.mu.Lock()
	m.items[id] = memoryEntry{session: s.clone(), expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of records currently held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the janitor.
func (m *MemoryStore) Close() error {
	m.stopped.Do(func() { close(m.stop) })
	return nil
}
