// Package service implements the clinic catalog workflows. Every operation
// is scoped to the clinic resolved for the request; no cross-clinic reads or
// writes are possible through this layer.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"bookify/internal/catalog/models"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/platform/sentinel"
	"bookify/pkg/requestcontext"
)

// Store is the persistence boundary for the catalog.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	ListRooms(ctx context.Context, tenantID string) ([]models.Room, error)
	FindRoom(ctx context.Context, tenantID, id string) (*models.Room, error)
	DeleteRoom(ctx context.Context, tenantID, id string) error
	CreateStaff(ctx context.Context, member *models.StaffMember) error
	ListStaff(ctx context.Context, tenantID string) ([]models.StaffMember, error)
	FindStaff(ctx context.Context, tenantID, id string) (*models.StaffMember, error)
	CreateCategory(ctx context.Context, category *models.TreatmentCategory) error
	ListCategories(ctx context.Context, tenantID string) ([]models.TreatmentCategory, error)
	FindCategory(ctx context.Context, tenantID, id string) (*models.TreatmentCategory, error)
	DeleteCategory(ctx context.Context, tenantID, id string) error
	CreateTreatment(ctx context.Context, treatment *models.Treatment) error
	ListTreatments(ctx context.Context, tenantID string) ([]models.Treatment, error)
	FindTreatment(ctx context.Context, tenantID, id string) (*models.Treatment, error)
	AddVariant(ctx context.Context, tenantID string, variant *models.TreatmentVariant) error
	FindVariant(ctx context.Context, tenantID, variantID string) (*models.TreatmentVariant, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func tenantFromContext(ctx context.Context) (string, error) {
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		return "", dErrors.New(dErrors.CodeTenantUnresolved, "clinic not found")
	}
	return tenantID, nil
}

func (s *Service) CreateRoom(ctx context.Context, name string) (*models.Room, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "room name is required")
	}

	room := &models.Room{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a room with this name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create room")
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.store.ListRooms(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list rooms")
	}
	return rooms, nil
}

func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRoom(ctx, tenantID, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "room not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not delete room")
	}
	return nil
}

func (s *Service) CreateStaff(ctx context.Context, name string, skills []string) (*models.StaffMember, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "staff member name is required")
	}

	member := &models.StaffMember{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      name,
		Skills:    skills,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateStaff(ctx, member); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create staff member")
	}
	return member, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.store.ListStaff(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list staff")
	}
	return staff, nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*models.TreatmentCategory, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "category name is required")
	}

	category := &models.TreatmentCategory{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a category with this name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create category")
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.TreatmentCategory, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list categories")
	}
	return categories, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, tenantID, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not delete category")
	}
	return nil
}

func (s *Service) CreateTreatment(ctx context.Context, treatment *models.Treatment) (*models.Treatment, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := treatment.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	if treatment.CategoryID != "" {
		if _, err := s.store.FindCategory(ctx, tenantID, treatment.CategoryID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeBadRequest, "unknown treatment category")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load category")
		}
	}

	treatment.ID = uuid.NewString()
	treatment.TenantID = tenantID
	treatment.CreatedAt = requestcontext.Now(ctx)
	for i := range treatment.Variants {
		treatment.Variants[i].ID = uuid.NewString()
		treatment.Variants[i].TreatmentID = treatment.ID
	}

	if err := s.store.CreateTreatment(ctx, treatment); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create treatment")
	}
	return treatment, nil
}

func (s *Service) ListTreatments(ctx context.Context) ([]models.Treatment, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	treatments, err := s.store.ListTreatments(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list treatments")
	}
	return treatments, nil
}

// AddVariant appends a duration/price option to an existing treatment.
func (s *Service) AddVariant(ctx context.Context, treatmentID string, variant *models.TreatmentVariant) (*models.TreatmentVariant, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := variant.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, err.Error())
	}

	variant.ID = uuid.NewString()
	variant.TreatmentID = treatmentID
	if err := s.store.AddVariant(ctx, tenantID, variant); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "treatment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not add treatment variant")
	}
	return variant, nil
}

// ListVariants returns the variants of one treatment.
func (s *Service) ListVariants(ctx context.Context, treatmentID string) ([]models.TreatmentVariant, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	treatment, err := s.store.FindTreatment(ctx, tenantID, treatmentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "treatment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load treatment")
	}
	return treatment.Variants, nil
}

// FindRoom and FindStaff are used by the booking workflow to confirm the
// referenced resources belong to the caller's clinic.
func (s *Service) FindRoom(ctx context.Context, id string) (*models.Room, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	room, err := s.store.FindRoom(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "room not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load room")
	}
	return room, nil
}

func (s *Service) FindVariant(ctx context.Context, variantID string) (*models.TreatmentVariant, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.store.FindVariant(ctx, tenantID, variantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "treatment variant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load treatment variant")
	}
	return v, nil
}

func (s *Service) FindStaff(ctx context.Context, id string) (*models.StaffMember, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	member, err := s.store.FindStaff(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "staff member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load staff member")
	}
	return member, nil
}
