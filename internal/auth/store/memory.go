package store

import (
	"context"
	"fmt"
	"sync"

	"bookify/internal/auth/models"
	"bookify/pkg/platform/sentinel"
)

// InMemoryStore keeps user accounts in memory for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *InMemoryStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[u.Email]; exists {
		return fmt.Errorf("email %s: %w", u.Email, sentinel.ErrConflict)
	}
	cp := cloneUser(u)
	s.byID[u.ID] = cp
	s.byEmail[u.Email] = cp
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byEmail[email]; ok {
		return cloneUser(u), nil
	}
	return nil, fmt.Errorf("user: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	u.Active = active
	return nil
}

func (s *InMemoryStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}
