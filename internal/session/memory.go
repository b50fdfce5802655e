package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ashureev/bloomify/internal/domain"
)

type memoryEntry struct {
	key       domain.SessionKey
	window    *Window
	updatedAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	opts     Options
	now      func() time.Time
	closed   bool
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

func (m *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return now.Sub(e.updatedAt) > m.opts.TTL
}

// Get returns the live turns for key.
func (m *MemoryStore) Get(_ context.Context, key domain.SessionKey) (*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	conv := &domain.Conversation{Key: key}
	e, ok := m.sessions[key.String()]
	if !ok || m.expired(e, m.now()) {
		return conv, nil
	}
	conv.Turns = e.window.Turns()
	return conv, nil
}

// Append adds turns to the session window.
func (m *MemoryStore) Append(_ context.Context, key domain.SessionKey, turns ...domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	now := m.now()
	e, ok := m.sessions[key.String()]
	if !ok {
		e = &memoryEntry{key: key, window: NewWindow(m.opts.HistoryTurns)}
		m.sessions[key.String()] = e
	} else if m.expired(e, now) {
		e.window.Reset()
	}
	e.window.Append(turns...)
	e.updatedAt = now
	return nil
}

// Delete removes one session.
func (m *MemoryStore) Delete(_ context.Context, key domain.SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key.String())
	return nil
}

// DeleteCaller removes every session owned by callerID.
func (m *MemoryStore) DeleteCaller(_ context.Context, callerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for k, e := range m.sessions {
		if e.key.CallerID == callerID {
			delete(m.sessions, k)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of sessions that have not expired.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.sessions {
		if !m.expired(e, now) {
			n++
		}
	}
	return n, nil
}

// Sweep drops expired sessions.
func (m *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for k, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, k)
			swept++
		}
	}
	return swept, nil
}

// Ping always succeeds unless the store is closed.
func (m *MemoryStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close drops all sessions.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.sessions = make(map[string]*memoryEntry)
	return nil
}

// Keys lists the live session keys, sorted by their string form. Used for
// diagnostics and tests.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.sessions))
	for k := range m.sessions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var _ Store = (*MemoryStore)(nil)
