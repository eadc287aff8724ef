package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/auth/models"
	"bookify/internal/auth/session"
	"bookify/pkg/platform/sentinel"
)

func TestInMemoryStore_RoundTrip(t *testing.T) {
	store := session.NewMemory()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	sess := &models.Session{
		ID:        "sid-1",
		UserID:    "user-1",
		Email:     "owner@clinic.test",
		Roles:     []string{"OWNER"},
		CreatedAt: now,
		ExpiresAt: now.Add(12 * time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Find(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	// The returned value is a copy; mutating it must not affect the store.
	got.UserID = "tampered"
	again, err := store.Find(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", again.UserID)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := session.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{ID: "sid-1"}))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	_, err := store.Find(ctx, "sid-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "sid-1"), "delete is idempotent")
}

func TestInMemoryStore_Purge(t *testing.T) {
	store := session.NewMemory()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &models.Session{ID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &models.Session{ID: "lapsed", ExpiresAt: now.Add(-time.Hour)}))

	assert.Equal(t, 1, store.Purge(now))

	_, err := store.Find(ctx, "lapsed")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.Find(ctx, "live")
	assert.NoError(t, err)
}
