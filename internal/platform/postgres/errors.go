package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// IsUniqueViolation detects Postgres unique constraint violations (SQLSTATE
// 23505) across both drivers in play: lib/pq surfaces *pq.Error, pgx exposes
// the state via SQLState().
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	type sqlState interface{ SQLState() string }
	var st sqlState
	return errors.As(err, &st) && st.SQLState() == "23505"
}
