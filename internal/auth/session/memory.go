// Package session provides server-side session storage. Sessions are keyed
// by an opaque id that doubles as the cookie value; rotation on login means
// a pre-auth id is never promoted to an authenticated one.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookify/internal/auth/models"
	"bookify/pkg/platform/sentinel"
)

// Store is the persistence boundary for login sessions.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryStore keeps sessions in memory. Expiry is enforced on read; Purge
// reclaims lapsed entries.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *InMemoryStore) Save(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session: %w", sentinel.ErrNotFound)
	}
	cp := *sess
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Purge removes sessions that expired before now and returns the count.
func (s *InMemoryStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
