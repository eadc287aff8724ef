package store

import (
	"context"
	"fmt"
	"sync"

	"bookify/internal/tenant/models"
	"bookify/pkg/platform/sentinel"
)

// InMemoryStore keeps tenants in memory for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*models.Tenant
	bySubdo  map[string]*models.Tenant
	settings map[string]*models.ClinicSettings
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[string]*models.Tenant),
		bySubdo:  make(map[string]*models.Tenant),
		settings: make(map[string]*models.ClinicSettings),
	}
}

func (s *InMemoryStore) Create(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySubdo[t.Subdomain]; exists {
		return fmt.Errorf("subdomain %s taken: %w", t.Subdomain, sentinel.ErrConflict)
	}
	cp := *t
	s.byID[t.ID] = &cp
	s.bySubdo[t.Subdomain] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("tenant %s: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.bySubdo[subdomain]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("subdomain %s: %w", subdomain, sentinel.ErrNotFound)
}

func (s *InMemoryStore) SaveSettings(_ context.Context, settings *models.ClinicSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *settings
	s.settings[settings.TenantID] = &cp
	return nil
}

func (s *InMemoryStore) FindSettings(_ context.Context, tenantID string) (*models.ClinicSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.settings[tenantID]; ok {
		cp := *settings
		return &cp, nil
	}
	return nil, fmt.Errorf("settings for tenant %s: %w", tenantID, sentinel.ErrNotFound)
}
