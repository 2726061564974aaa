package quiz

import (
	"context"
	"sync"
	"time"
)

// DefaultSessionTTL bounds how long an idle session is kept.
const DefaultSessionTTL = 2 * time.Hour

const memorySweepInterval = time.Minute

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Sessions are stored by value and
// transitions never mutate a stored session in place, so readers need no
// copy. A session not saved for ttl is dropped.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithTTL(DefaultSessionTTL)
}

// NewMemoryStoreWithTTL returns a store that expires idle sessions after ttl.
// A non-positive ttl means DefaultSessionTTL.
func NewMemoryStoreWithTTL(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) SaveSession(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)
	if session.Version > 0 {
		var stored int64
		if entry, ok := m.sessions[session.ID]; ok && now.Before(entry.expiresAt) {
			stored = entry.session.Version
		}
		if stored != session.Version-1 {
			return ErrSessionConflict
		}
	}
	m.sessions[session.ID] = memoryEntry{session: session, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, sessionID)
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Len reports how many sessions are held, expired ones included until the
// next sweep.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < memorySweepInterval {
		return
	}
	m.lastSweep = now
	for id, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
