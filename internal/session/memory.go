package session

import (
	"context"
	"sync"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/errs"
)

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryManager keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between processes.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryManager creates an in-memory session manager.
func NewMemoryManager(ttl time.Duration) *MemoryManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryManager{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryManager) Issue(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", errs.E(errs.Other, "session.Issue", err)
	}

	m.mu.Lock()
	m.sessions[hashToken(token)] = &memoryEntry{userID: userID, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	return token, nil
}

func (m *MemoryManager) Resolve(ctx context.Context, token string) (int64, error) {
	const op = "session.Resolve"

	if token == "" {
		return 0, unauthenticated(op, ErrNoToken)
	}

	m.mu.RLock()
	entry, ok := m.sessions[hashToken(token)]
	m.mu.RUnlock()

	if !ok || !m.now().Before(entry.expiresAt) {
		return 0, unauthenticated(op, ErrInvalidToken)
	}
	return entry.userID, nil
}

func (m *MemoryManager) Purge(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, hashToken(token))
	m.mu.Unlock()
	return nil
}

func (m *MemoryManager) PurgeUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.sessions {
		if entry.userID == userID {
			delete(m.sessions, key)
		}
	}
	return nil
}

func (m *MemoryManager) Prune(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int64
	for key, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
