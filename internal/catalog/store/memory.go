package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bookify/internal/catalog/models"
	"bookify/pkg/platform/sentinel"
)

// InMemoryStore keeps the catalog in memory for tests and development.
type InMemoryStore struct {
	mu         sync.RWMutex
	rooms      map[string]*models.Room
	staff      map[string]*models.StaffMember
	treatments map[string]*models.Treatment
	categories map[string]*models.TreatmentCategory
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		rooms:      make(map[string]*models.Room),
		staff:      make(map[string]*models.StaffMember),
		treatments: make(map[string]*models.Treatment),
		categories: make(map[string]*models.TreatmentCategory),
	}
}

func (s *InMemoryStore) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rooms {
		if existing.TenantID == room.TenantID && existing.Name == room.Name {
			return fmt.Errorf("room %s: %w", room.Name, sentinel.ErrConflict)
		}
	}
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListRooms(_ context.Context, tenantID string) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Room
	for _, room := range s.rooms {
		if room.TenantID == tenantID {
			out = append(out, *room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) FindRoom(_ context.Context, tenantID, id string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok || room.TenantID != tenantID {
		return nil, fmt.Errorf("room %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *room
	return &cp, nil
}

func (s *InMemoryStore) DeleteRoom(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.TenantID != tenantID {
		return fmt.Errorf("room %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.rooms, id)
	return nil
}

func (s *InMemoryStore) CreateStaff(_ context.Context, member *models.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *member
	cp.Skills = append([]string(nil), member.Skills...)
	s.staff[member.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListStaff(_ context.Context, tenantID string) ([]models.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StaffMember
	for _, member := range s.staff {
		if member.TenantID == tenantID {
			cp := *member
			cp.Skills = append([]string(nil), member.Skills...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) FindStaff(_ context.Context, tenantID, id string) (*models.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.staff[id]
	if !ok || member.TenantID != tenantID {
		return nil, fmt.Errorf("staff member %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *member
	cp.Skills = append([]string(nil), member.Skills...)
	return &cp, nil
}

func (s *InMemoryStore) CreateCategory(_ context.Context, category *models.TreatmentCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.TenantID == category.TenantID && existing.Name == category.Name {
			return fmt.Errorf("category %s: %w", category.Name, sentinel.ErrConflict)
		}
	}
	cp := *category
	s.categories[category.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListCategories(_ context.Context, tenantID string) ([]models.TreatmentCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TreatmentCategory
	for _, category := range s.categories {
		if category.TenantID == tenantID {
			out = append(out, *category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) FindCategory(_ context.Context, tenantID, id string) (*models.TreatmentCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.categories[id]
	if !ok || category.TenantID != tenantID {
		return nil, fmt.Errorf("category %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *category
	return &cp, nil
}

func (s *InMemoryStore) DeleteCategory(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.categories[id]
	if !ok || category.TenantID != tenantID {
		return fmt.Errorf("category %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.categories, id)
	// Treatments keep working; they just become uncategorized.
	for _, treatment := range s.treatments {
		if treatment.CategoryID == id {
			treatment.CategoryID = ""
		}
	}
	return nil
}

func (s *InMemoryStore) CreateTreatment(_ context.Context, treatment *models.Treatment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *treatment
	cp.Variants = append([]models.TreatmentVariant(nil), treatment.Variants...)
	s.treatments[treatment.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListTreatments(_ context.Context, tenantID string) ([]models.Treatment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Treatment
	for _, treatment := range s.treatments {
		if treatment.TenantID == tenantID {
			cp := *treatment
			cp.Variants = append([]models.TreatmentVariant(nil), treatment.Variants...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) FindVariant(_ context.Context, tenantID, variantID string) (*models.TreatmentVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, treatment := range s.treatments {
		if treatment.TenantID != tenantID {
			continue
		}
		for _, v := range treatment.Variants {
			if v.ID == variantID {
				cp := v
				return &cp, nil
			}
		}
	}
	return nil, fmt.Errorf("treatment variant %s: %w", variantID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) AddVariant(_ context.Context, tenantID string, variant *models.TreatmentVariant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	treatment, ok := s.treatments[variant.TreatmentID]
	if !ok || treatment.TenantID != tenantID {
		return fmt.Errorf("treatment %s: %w", variant.TreatmentID, sentinel.ErrNotFound)
	}
	treatment.Variants = append(treatment.Variants, *variant)
	return nil
}

func (s *InMemoryStore) FindTreatment(_ context.Context, tenantID, id string) (*models.Treatment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	treatment, ok := s.treatments[id]
	if !ok || treatment.TenantID != tenantID {
		return nil, fmt.Errorf("treatment %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *treatment
	cp.Variants = append([]models.TreatmentVariant(nil), treatment.Variants...)
	return &cp, nil
}
