package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bookify/internal/booking/models"
	"bookify/pkg/platform/sentinel"
)

// InMemoryStore keeps bookings in memory for tests and development.
type InMemoryStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{bookings: make(map[string]*models.Booking)}
}

// Create rejects a booking whose room or staff member is already occupied in
// an overlapping slot within the same clinic.
func (s *InMemoryStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if existing.TenantID != b.TenantID {
			continue
		}
		if !existing.Overlaps(b.StartTime, b.EndTime) {
			continue
		}
		if existing.RoomID == b.RoomID || existing.StaffID == b.StaffID {
			return fmt.Errorf("slot taken: %w", sentinel.ErrConflict)
		}
	}

	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID string, from, to time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.TenantID != tenantID {
			continue
		}
		if !from.IsZero() && b.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && !b.StartTime.Before(to) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}
