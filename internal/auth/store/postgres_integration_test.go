//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/auth/models"
	"bookify/internal/auth/store"
	"bookify/pkg/platform/sentinel"
	"bookify/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db := containers.StartPostgres(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO tenants (id, subdomain, name, created_at)
		VALUES ('tenant-1', 'clinic1', 'Clinic One', NOW())
	`)
	require.NoError(t, err)

	s := store.NewPostgres(db)
	user := &models.User{
		ID:           "user-1",
		Email:        "owner@clinic.test",
		PasswordHash: "bcrypt-hash",
		Roles:        []string{"OWNER", "STAFF"},
		TenantID:     "tenant-1",
		Active:       false,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, s.Create(ctx, user))

	t.Run("roles survive the text array round trip", func(t *testing.T) {
		got, err := s.FindByEmail(ctx, "owner@clinic.test")
		require.NoError(t, err)
		assert.Equal(t, []string{"OWNER", "STAFF"}, got.Roles)
		assert.False(t, got.Active)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := *user
		dup.ID = "user-2"
		assert.ErrorIs(t, s.Create(ctx, &dup), sentinel.ErrConflict)
	})

	t.Run("activation persists", func(t *testing.T) {
		require.NoError(t, s.SetActive(ctx, "user-1", true))
		got, err := s.FindByID(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, got.Active)
	})

	t.Run("password update persists", func(t *testing.T) {
		require.NoError(t, s.UpdatePassword(ctx, "user-1", "new-hash"))
		got, err := s.FindByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.FindByEmail(ctx, "nobody@clinic.test")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, s.SetActive(ctx, "nobody", true), sentinel.ErrNotFound)
	})
}
