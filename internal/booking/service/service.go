// Package service implements the booking workflow: a public visitor books a
// treatment variant with a staff member in a room, and clinic staff list the
// resulting schedule.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookify/internal/audit"
	"bookify/internal/booking/models"
	catalogmodels "bookify/internal/catalog/models"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/platform/sentinel"
	"bookify/pkg/requestcontext"
)

// Store is the persistence boundary for bookings.
type Store interface {
	Create(ctx context.Context, b *models.Booking) error
	ListByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error)
}

// Catalog confirms the referenced resources belong to the caller's clinic.
type Catalog interface {
	FindRoom(ctx context.Context, id string) (*catalogmodels.Room, error)
	FindStaff(ctx context.Context, id string) (*catalogmodels.StaffMember, error)
	FindVariant(ctx context.Context, variantID string) (*catalogmodels.TreatmentVariant, error)
}

// CreateRequest is the public booking input. The slot length comes from the
// treatment variant, never from the caller.
type CreateRequest struct {
	VariantID     string
	StaffID       string
	RoomID        string
	CustomerName  string
	CustomerEmail string
	StartTime     time.Time
}

type Service struct {
	store   Store
	catalog Catalog
	auditor audit.Publisher
}

func New(store Store, catalog Catalog, auditor audit.Publisher) *Service {
	return &Service{store: store, catalog: catalog, auditor: auditor}
}

// Create books the slot. All referenced resources must resolve within the
// current clinic; an occupied room or staff member yields a conflict.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeTenantUnresolved, "clinic not found")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	variant, err := s.catalog.FindVariant(ctx, req.VariantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.FindStaff(ctx, req.StaffID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.FindRoom(ctx, req.RoomID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	b := &models.Booking{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		VariantID:     variant.ID,
		StaffID:       req.StaffID,
		RoomID:        req.RoomID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		StartTime:     req.StartTime,
		EndTime:       req.StartTime.Add(time.Duration(variant.DurationMinutes) * time.Minute),
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "the requested slot is no longer available")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create booking")
	}

	s.auditor.Publish(ctx, audit.Event{
		Action:        audit.ActionBookingCreated,
		TenantID:      tenantID,
		CorrelationID: requestcontext.CorrelationID(ctx),
		OccurredAt:    now,
		Metadata:      map[string]string{"booking_id": b.ID},
	})
	return b, nil
}

// List returns the clinic's schedule, optionally bounded by [from, to).
func (s *Service) List(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeTenantUnresolved, "clinic not found")
	}
	bookings, err := s.store.ListByTenant(ctx, tenantID, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list bookings")
	}
	return bookings, nil
}

func validate(req CreateRequest) error {
	switch {
	case req.VariantID == "":
		return dErrors.New(dErrors.CodeBadRequest, "treatment variant is required")
	case req.StaffID == "":
		return dErrors.New(dErrors.CodeBadRequest, "staff member is required")
	case req.RoomID == "":
		return dErrors.New(dErrors.CodeBadRequest, "room is required")
	case req.CustomerName == "":
		return dErrors.New(dErrors.CodeBadRequest, "customer name is required")
	case req.CustomerEmail == "":
		return dErrors.New(dErrors.CodeBadRequest, "customer email is required")
	case req.StartTime.IsZero():
		return dErrors.New(dErrors.CodeBadRequest, "start time is required")
	}
	return nil
}
