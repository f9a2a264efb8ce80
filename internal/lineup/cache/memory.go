package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"paddock/pkg/platform/sentinel"
)

// Memory is an in-process cache. It only keeps documents for the most
// recently written snapshot; writing a key for a new snapshot drops the rest.
type Memory struct {
	mu         sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
	generation uuid.UUID
	entries    map[string]memoryEntry
}

type memoryEntry struct {
	doc       []byte
	expiresAt time.Time
}

type MemoryOption func(*Memory)

// WithTTL expires entries after ttl. Zero keeps entries until the snapshot changes.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Cache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key.String()]
	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		return nil, sentinel.ErrNotFound
	}
	return e.doc, nil
}

func (m *Memory) Set(_ context.Context, key Key, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key.SnapshotID != m.generation {
		m.generation = key.SnapshotID
		m.entries = make(map[string]memoryEntry)
	}
	e := memoryEntry{doc: doc}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[key.String()] = e
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
