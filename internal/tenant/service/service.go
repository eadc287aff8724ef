package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"bookify/internal/tenant/models"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/platform/sentinel"
	"bookify/pkg/requestcontext"
)

// TenantStore is the persistence boundary for clinics and their settings.
type TenantStore interface {
	Create(ctx context.Context, t *models.Tenant) error
	FindByID(ctx context.Context, id string) (*models.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	SaveSettings(ctx context.Context, settings *models.ClinicSettings) error
	FindSettings(ctx context.Context, tenantID string) (*models.ClinicSettings, error)
}

// Service resolves clinics from host headers and manages clinic records.
type Service struct {
	tenants TenantStore
	pattern *regexp.Regexp
}

// New builds the tenant service for a root domain. Hosts are matched against
// "<label>.<rootDomain>" with an optional port.
func New(tenants TenantStore, rootDomain string) *Service {
	pattern := regexp.MustCompile(`^(?P<sub>[^.]+)\.` + regexp.QuoteMeta(strings.ToLower(rootDomain)) + `(:\d+)?$`)
	return &Service{tenants: tenants, pattern: pattern}
}

// ResolveHost maps a request's host headers to a tenant id. The forwarded
// host wins when present (proxy-aware). A missing subdomain, a malformed
// host, or an unknown clinic all yield ("", false), never an error.
// Downstream handlers decide whether an unresolved tenant matters for their
// route; health checks, for one, are tenant-agnostic.
func (s *Service) ResolveHost(ctx context.Context, host, forwardedHost string) (string, bool) {
	effective := host
	if forwardedHost != "" {
		effective = forwardedHost
	}
	effective = strings.ToLower(strings.TrimSpace(effective))

	m := s.pattern.FindStringSubmatch(effective)
	if m == nil {
		return "", false
	}
	sub := m[s.pattern.SubexpIndex("sub")]

	tenant, err := s.tenants.FindBySubdomain(ctx, sub)
	if err != nil {
		return "", false
	}
	return tenant.ID, true
}

// CreateClinic registers a new clinic under a subdomain.
func (s *Service) CreateClinic(ctx context.Context, subdomain, name string) (*models.Tenant, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))

	t, err := models.NewTenant(uuid.NewString(), subdomain, strings.TrimSpace(name), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("subdomain %q is already in use", subdomain))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create clinic")
	}
	return t, nil
}

// GetSettings returns the clinic's booking-day settings, falling back to the
// defaults when the owner never customized them.
func (s *Service) GetSettings(ctx context.Context, tenantID string) (*models.ClinicSettings, error) {
	settings, err := s.tenants.FindSettings(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.DefaultSettings(tenantID), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clinic settings")
	}
	return settings, nil
}

// UpdateSettings validates and saves the clinic's booking-day settings.
func (s *Service) UpdateSettings(ctx context.Context, tenantID string, settings *models.ClinicSettings) (*models.ClinicSettings, error) {
	settings.TenantID = tenantID
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetClinic(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := s.tenants.SaveSettings(ctx, settings); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save clinic settings")
	}
	return settings, nil
}

// GetClinic fetches a clinic by id.
func (s *Service) GetClinic(ctx context.Context, id string) (*models.Tenant, error) {
	t, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clinic")
	}
	return t, nil
}
