package session

import (
	"context"
	"sync"
	"time"

	"github.com/axelsub/axelsub/internal/domain"
)

// MemoryStore implements Store with an in-process map. Sessions do not
// survive a restart; production deployments wanting durable sessions use the
// SQLite store instead.
type MemoryStore struct {
	// Now is the clock used for expiry decisions; tests may override it.
	Now func() time.Time

	mu       sync.RWMutex
	sessions map[string]domain.Session
}

var _ Store = (*MemoryStore)(nil)

// MemoryStoreFactory creates a factory function that returns a new MemoryStore.
func MemoryStoreFactory() StoreFactory {
	return func() (Store, error) {
		return NewMemoryStore(), nil
	}
}

// NewMemoryStore creates an empty MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
}

// Insert implements Store.Insert.
func (s *MemoryStore) Insert(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = session

	return nil
}

// Lookup implements Store.Lookup. Expiry is a timestamp comparison only;
// collection is left to Sweep.
func (s *MemoryStore) Lookup(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	now := s.Now()
	if session.ExpiredAt(now) {
		return nil, domain.ErrSessionExpired
	}

	session.LastUsedAt = now.Unix()
	s.sessions[token] = session

	return &session, nil
}

// Invalidate implements Store.Invalidate.
func (s *MemoryStore) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)

	return nil
}

// Sweep implements Store.Sweep.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		now   = s.Now()
		swept int
	)

	for token, session := range s.sessions {
		if session.ExpiredAt(now) {
			delete(s.sessions, token)
			swept++
		}
	}

	return swept, nil
}

// Close implements Store.Close.
func (s *MemoryStore) Close() error {
	return nil
}
