package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookify/internal/booking/models"
	"bookify/internal/platform/postgres"
	"bookify/pkg/platform/sentinel"
)

// PostgresStore persists bookings. Overlap detection runs inside the insert
// transaction; unique indexes on (tenant_id, room_id, start_time) and
// (tenant_id, staff_id, start_time) back it up for exact-slot races.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, b *models.Booking) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin booking insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE tenant_id = $1
			  AND (room_id = $2 OR staff_id = $3)
			  AND start_time < $5 AND $4 < end_time
		)
	`, b.TenantID, b.RoomID, b.StaffID, b.StartTime, b.EndTime).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check booking overlap: %w", err)
	}
	if taken {
		return fmt.Errorf("slot taken: %w", sentinel.ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings
			(id, tenant_id, variant_id, staff_id, room_id,
			 customer_name, customer_email, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.TenantID, b.VariantID, b.StaffID, b.RoomID,
		b.CustomerName, b.CustomerEmail, b.StartTime, b.EndTime, b.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("slot taken: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error) {
	query := `
		SELECT id, tenant_id, variant_id, staff_id, room_id,
		       customer_name, customer_email, start_time, end_time, created_at
		FROM bookings
		WHERE tenant_id = $1
	`
	args := []any{tenantID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND start_time < $%d", len(args))
	}
	query += " ORDER BY start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.TenantID, &b.VariantID, &b.StaffID, &b.RoomID,
			&b.CustomerName, &b.CustomerEmail, &b.StartTime, &b.EndTime, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
