package session

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/utils"
)

// MemoryStore keeps sessions in process memory. It backs tests and
// deployments without Redis; sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewMemoryStore returns an empty store. now may be nil to use time.Now.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{ttl: ttl, now: now, sessions: map[string]Session{}}
}

func (m *MemoryStore) Create(_ context.Context, s Session) (string, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return "", err
	}
	now := m.now().UTC()
	s.CreatedAt, s.LastSeen = now, now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	m.sweep(now)
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	now := m.now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if now.Sub(s.LastSeen) > m.ttl {
		delete(m.sessions, id)
		return Session{}, ErrNotFound
	}
	s.LastSeen = now
	m.sessions[id] = s
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// sweep drops expired sessions. Callers hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
