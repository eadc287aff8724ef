package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookify/internal/platform/postgres"
	"bookify/internal/token"
	"bookify/pkg/platform/sentinel"
)

// PostgresStore persists tokens in PostgreSQL. The table is chosen per
// purpose so verification and reset tokens stay disjoint at the schema level.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgres builds a store over the named token table. Valid tables are
// created by the schema migration: verification_tokens, password_reset_tokens.
func NewPostgres(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

func (s *PostgresStore) Save(ctx context.Context, t *token.SecurityToken) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, value, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.table)
	_, err := s.db.ExecContext(ctx, query, t.ID, t.Value, t.UserID, t.ExpiresAt, t.Used, t.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("token value: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByValue(ctx context.Context, value string) (*token.SecurityToken, error) {
	query := fmt.Sprintf(`
		SELECT id, value, user_id, expires_at, used, created_at
		FROM %s WHERE value = $1
	`, s.table)

	var t token.SecurityToken
	err := s.db.QueryRowContext(ctx, query, value).
		Scan(&t.ID, &t.Value, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) MarkUsed(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET used = TRUE WHERE id = $1`, s.table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
