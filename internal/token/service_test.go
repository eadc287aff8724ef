package token_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/token"
	"bookify/internal/token/store"
	"bookify/pkg/platform/sentinel"
	"bookify/pkg/requestcontext"
)

func newLifecycle() *token.Lifecycle {
	return token.NewLifecycle(token.PurposeVerification, store.NewMemory())
}

func TestIssue_GeneratesOpaqueURLSafeValue(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()

	tok, err := lc.Issue(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok.Value)
	require.NoError(t, err, "value must be unpadded URL-safe base64")
	assert.Len(t, raw, 32, "value must carry 256 bits of entropy")
	assert.False(t, tok.Used)
	assert.Equal(t, "user-1", tok.UserID)
}

func TestIssue_ValuesAreUnique(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok, err := lc.Issue(ctx, "user-1", time.Hour)
		require.NoError(t, err)
		require.False(t, seen[tok.Value], "duplicate token value issued")
		seen[tok.Value] = true
	}
}

func TestValidate_HappyPath(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()

	issued, err := lc.Issue(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	got, err := lc.Validate(ctx, issued.Value)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
}

func TestValidate_SingleUse(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()

	issued, err := lc.Issue(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	got, err := lc.Validate(ctx, issued.Value)
	require.NoError(t, err)
	require.NoError(t, lc.Consume(ctx, got))

	_, err = lc.Validate(ctx, issued.Value)
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "consumed token must look absent")
}

func TestValidate_IndistinguishableOutcomes(t *testing.T) {
	lc := newLifecycle()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	expired, err := lc.Issue(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	consumed, err := lc.Issue(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, lc.Consume(ctx, consumed))

	later := requestcontext.WithTime(context.Background(), now.Add(2*time.Minute))

	cases := map[string]string{
		"unknown value": "bm90LWEtcmVhbC10b2tlbg",
		"expired":       expired.Value,
		"consumed":      consumed.Value,
		"empty":         "",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := lc.Validate(later, value)
			assert.ErrorIs(t, err, sentinel.ErrNotFound)
			assert.EqualError(t, err, sentinel.ErrNotFound.Error(),
				"all invalid outcomes must produce the identical error")
		})
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	lc := newLifecycle()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), issuedAt)

	tok, err := lc.Issue(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	// Exactly at expiry the token is no longer live.
	atExpiry := requestcontext.WithTime(context.Background(), issuedAt.Add(time.Hour))
	_, err = lc.Validate(atExpiry, tok.Value)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	justBefore := requestcontext.WithTime(context.Background(), issuedAt.Add(time.Hour-time.Second))
	_, err = lc.Validate(justBefore, tok.Value)
	assert.NoError(t, err)
}

func TestConsume_Idempotent(t *testing.T) {
	lc := newLifecycle()
	ctx := context.Background()

	tok, err := lc.Issue(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, lc.Consume(ctx, tok))
	assert.NoError(t, lc.Consume(ctx, tok), "second consume of a known token must not fail")
}
