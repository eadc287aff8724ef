package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bookify/internal/catalog/models"
	"bookify/internal/platform/postgres"
	"bookify/pkg/platform/sentinel"
)

// PostgresStore persists the catalog. Staff skills live in a text[] column;
// treatment variants in their own table loaded alongside the parent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateRoom(ctx context.Context, room *models.Room) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, tenant_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, room.ID, room.TenantID, room.Name, room.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("room %s: %w", room.Name, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRooms(ctx context.Context, tenantID string) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, created_at
		FROM rooms WHERE tenant_id = $1 ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.TenantID, &room.Name, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindRoom(ctx context.Context, tenantID, id string) (*models.Room, error) {
	var room models.Room
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, created_at
		FROM rooms WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&room.ID, &room.TenantID, &room.Name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return &room, nil
}

func (s *PostgresStore) DeleteRoom(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rooms WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("room %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateStaff(ctx context.Context, member *models.StaffMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_members (id, tenant_id, name, skills, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, member.ID, member.TenantID, member.Name, pq.Array(member.Skills), member.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert staff member: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListStaff(ctx context.Context, tenantID string) ([]models.StaffMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, skills, created_at
		FROM staff_members WHERE tenant_id = $1 ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var out []models.StaffMember
	for rows.Next() {
		var member models.StaffMember
		if err := rows.Scan(&member.ID, &member.TenantID, &member.Name,
			pq.Array(&member.Skills), &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan staff member: %w", err)
		}
		out = append(out, member)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindStaff(ctx context.Context, tenantID, id string) (*models.StaffMember, error) {
	var member models.StaffMember
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, skills, created_at
		FROM staff_members WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&member.ID, &member.TenantID, &member.Name,
		pq.Array(&member.Skills), &member.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("staff member %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find staff member: %w", err)
	}
	return &member, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *models.TreatmentCategory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO treatment_categories (id, tenant_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, category.ID, category.TenantID, category.Name, category.Description, category.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("category %s: %w", category.Name, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context, tenantID string) ([]models.TreatmentCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, description, created_at
		FROM treatment_categories WHERE tenant_id = $1 ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.TreatmentCategory
	for rows.Next() {
		var category models.TreatmentCategory
		if err := rows.Scan(&category.ID, &category.TenantID, &category.Name,
			&category.Description, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindCategory(ctx context.Context, tenantID, id string) (*models.TreatmentCategory, error) {
	var category models.TreatmentCategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, description, created_at
		FROM treatment_categories WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&category.ID, &category.TenantID, &category.Name,
		&category.Description, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM treatment_categories WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("category %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateTreatment(ctx context.Context, treatment *models.Treatment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin treatment insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO treatments (id, tenant_id, category_id, name, description, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
	`, treatment.ID, treatment.TenantID, treatment.CategoryID, treatment.Name, treatment.Description, treatment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert treatment: %w", err)
	}

	for _, v := range treatment.Variants {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO treatment_variants (id, treatment_id, name, duration_minutes, price_cents)
			VALUES ($1, $2, $3, $4, $5)
		`, v.ID, treatment.ID, v.Name, v.DurationMinutes, v.PriceCents)
		if err != nil {
			return fmt.Errorf("insert treatment variant: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListTreatments(ctx context.Context, tenantID string) ([]models.Treatment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, COALESCE(category_id, ''), name, description, created_at
		FROM treatments WHERE tenant_id = $1 ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	defer rows.Close()

	var out []models.Treatment
	for rows.Next() {
		var treatment models.Treatment
		if err := rows.Scan(&treatment.ID, &treatment.TenantID, &treatment.CategoryID,
			&treatment.Name, &treatment.Description, &treatment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan treatment: %w", err)
		}
		out = append(out, treatment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		variants, err := s.loadVariants(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Variants = variants
	}
	return out, nil
}

func (s *PostgresStore) FindTreatment(ctx context.Context, tenantID, id string) (*models.Treatment, error) {
	var treatment models.Treatment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, COALESCE(category_id, ''), name, description, created_at
		FROM treatments WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&treatment.ID, &treatment.TenantID, &treatment.CategoryID,
		&treatment.Name, &treatment.Description, &treatment.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("treatment %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find treatment: %w", err)
	}

	treatment.Variants, err = s.loadVariants(ctx, treatment.ID)
	if err != nil {
		return nil, err
	}
	return &treatment, nil
}

func (s *PostgresStore) FindVariant(ctx context.Context, tenantID, variantID string) (*models.TreatmentVariant, error) {
	var v models.TreatmentVariant
	err := s.db.QueryRowContext(ctx, `
		SELECT v.id, v.treatment_id, v.name, v.duration_minutes, v.price_cents
		FROM treatment_variants v
		JOIN treatments t ON t.id = v.treatment_id
		WHERE t.tenant_id = $1 AND v.id = $2
	`, tenantID, variantID).Scan(&v.ID, &v.TreatmentID, &v.Name, &v.DurationMinutes, &v.PriceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("treatment variant %s: %w", variantID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find treatment variant: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) AddVariant(ctx context.Context, tenantID string, variant *models.TreatmentVariant) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO treatment_variants (id, treatment_id, name, duration_minutes, price_cents)
		SELECT $1, t.id, $3, $4, $5
		FROM treatments t WHERE t.tenant_id = $6 AND t.id = $2
	`, variant.ID, variant.TreatmentID, variant.Name, variant.DurationMinutes, variant.PriceCents, tenantID)
	if err != nil {
		return fmt.Errorf("insert treatment variant: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("treatment %s: %w", variant.TreatmentID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) loadVariants(ctx context.Context, treatmentID string) ([]models.TreatmentVariant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, treatment_id, name, duration_minutes, price_cents
		FROM treatment_variants WHERE treatment_id = $1 ORDER BY name
	`, treatmentID)
	if err != nil {
		return nil, fmt.Errorf("list treatment variants: %w", err)
	}
	defer rows.Close()

	var out []models.TreatmentVariant
	for rows.Next() {
		var v models.TreatmentVariant
		if err := rows.Scan(&v.ID, &v.TreatmentID, &v.Name, &v.DurationMinutes, &v.PriceCents); err != nil {
			return nil, fmt.Errorf("scan treatment variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
