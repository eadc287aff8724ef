package store

import (
	"context"
	"fmt"
	"sync"

	"bookify/internal/token"
	"bookify/pkg/platform/sentinel"
)

// InMemoryStore keeps tokens in memory for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*token.SecurityToken
	byValue map[string]*token.SecurityToken
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]*token.SecurityToken),
		byValue: make(map[string]*token.SecurityToken),
	}
}

func (s *InMemoryStore) Save(_ context.Context, t *token.SecurityToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byValue[t.Value]; exists {
		return fmt.Errorf("token value: %w", sentinel.ErrConflict)
	}
	cp := *t
	s.byID[t.ID] = &cp
	s.byValue[t.Value] = &cp
	return nil
}

func (s *InMemoryStore) FindByValue(_ context.Context, value string) (*token.SecurityToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byValue[value]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("token: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) MarkUsed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
	}
	t.Used = true
	return nil
}
