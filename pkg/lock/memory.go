package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLocker is a process-local Locker for single-instance deployments and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	clock func() time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryEntry), clock: time.Now}
}

func (m *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (*Claim, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if e, ok := m.held[key]; ok && now.Before(e.expires) {
		return nil, false, nil
	}

	token := uuid.NewString()
	m.held[key] = memoryEntry{token: token, expires: now.Add(ttl)}
	return &Claim{Key: key, Token: token, release: m.release}, true, nil
}

func (m *MemoryLocker) release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.held[key]
	if !ok || e.token != token {
		return ErrNotHeld
	}
	delete(m.held, key)
	return nil
}

// Held reports whether key is currently claimed.
func (m *MemoryLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.held[key]
	return ok && m.clock().Before(e.expires)
}
