package models

import (
	"regexp"
	"time"

	dErrors "bookify/pkg/domain-errors"
)

// Tenant is one clinic. Requests are scoped to exactly one tenant, selected
// by subdomain.
//
// Invariants:
//   - Subdomain is a single lowercase DNS label, unique across tenants
//   - Name is non-empty and at most 128 characters
type Tenant struct {
	ID        string    `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// NewTenant validates and constructs a tenant.
func NewTenant(id, subdomain, name string, now time.Time) (*Tenant, error) {
	if !subdomainPattern.MatchString(subdomain) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subdomain must be a valid DNS label")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "clinic name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "clinic name must be 128 characters or less")
	}
	return &Tenant{
		ID:        id,
		Subdomain: subdomain,
		Name:      name,
		CreatedAt: now,
	}, nil
}
