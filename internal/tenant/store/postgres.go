package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookify/internal/platform/postgres"
	"bookify/internal/tenant/models"
	"bookify/pkg/platform/sentinel"
)

// PostgresStore persists tenants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, subdomain, name, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, t.ID, t.Subdomain, t.Name, t.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("subdomain %s taken: %w", t.Subdomain, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Tenant, error) {
	return s.findOne(ctx, `SELECT id, subdomain, name, created_at FROM tenants WHERE id = $1`, id)
}

func (s *PostgresStore) FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	return s.findOne(ctx, `SELECT id, subdomain, name, created_at FROM tenants WHERE subdomain = $1`, subdomain)
}

func (s *PostgresStore) SaveSettings(ctx context.Context, settings *models.ClinicSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinic_settings (tenant_id, slot_interval_minutes, opens_at, closes_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO UPDATE
		SET slot_interval_minutes = EXCLUDED.slot_interval_minutes,
		    opens_at = EXCLUDED.opens_at,
		    closes_at = EXCLUDED.closes_at
	`, settings.TenantID, settings.SlotIntervalMinutes, settings.OpensAt, settings.ClosesAt)
	if err != nil {
		return fmt.Errorf("save clinic settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindSettings(ctx context.Context, tenantID string) (*models.ClinicSettings, error) {
	var settings models.ClinicSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, slot_interval_minutes, opens_at, closes_at
		FROM clinic_settings WHERE tenant_id = $1
	`, tenantID).Scan(&settings.TenantID, &settings.SlotIntervalMinutes,
		&settings.OpensAt, &settings.ClosesAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings for tenant %s: %w", tenantID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find clinic settings: %w", err)
	}
	return &settings, nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&t.ID, &t.Subdomain, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return &t, nil
}
