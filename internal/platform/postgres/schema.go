package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. Statements are idempotent
// so repeated startup against the same database is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id         TEXT PRIMARY KEY,
			subdomain  TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			roles         TEXT[] NOT NULL,
			tenant_id     TEXT NOT NULL REFERENCES tenants(id),
			active        BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS verification_tokens (
			id         TEXT PRIMARY KEY,
			value      TEXT NOT NULL UNIQUE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			expires_at TIMESTAMPTZ NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id         TEXT PRIMARY KEY,
			value      TEXT NOT NULL UNIQUE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			expires_at TIMESTAMPTZ NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id         TEXT PRIMARY KEY,
			tenant_id  TEXT NOT NULL REFERENCES tenants(id),
			name       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS staff_members (
			id         TEXT PRIMARY KEY,
			tenant_id  TEXT NOT NULL REFERENCES tenants(id),
			name       TEXT NOT NULL,
			skills     TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clinic_settings (
			tenant_id             TEXT PRIMARY KEY REFERENCES tenants(id),
			slot_interval_minutes INTEGER NOT NULL,
			opens_at              TEXT NOT NULL,
			closes_at             TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS treatment_categories (
			id          TEXT PRIMARY KEY,
			tenant_id   TEXT NOT NULL REFERENCES tenants(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS treatments (
			id          TEXT PRIMARY KEY,
			tenant_id   TEXT NOT NULL REFERENCES tenants(id),
			category_id TEXT REFERENCES treatment_categories(id) ON DELETE SET NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS treatment_variants (
			id               TEXT PRIMARY KEY,
			treatment_id     TEXT NOT NULL REFERENCES treatments(id) ON DELETE CASCADE,
			name             TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			price_cents      BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id             TEXT PRIMARY KEY,
			tenant_id      TEXT NOT NULL REFERENCES tenants(id),
			variant_id     TEXT NOT NULL REFERENCES treatment_variants(id),
			staff_id       TEXT NOT NULL REFERENCES staff_members(id),
			room_id        TEXT NOT NULL REFERENCES rooms(id),
			customer_name  TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			start_time     TIMESTAMPTZ NOT NULL,
			end_time       TIMESTAMPTZ NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, room_id, start_time),
			UNIQUE (tenant_id, staff_id, start_time)
		)`,
		`CREATE INDEX IF NOT EXISTS bookings_tenant_start_idx
			ON bookings (tenant_id, start_time)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
