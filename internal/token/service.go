package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookify/pkg/platform/sentinel"
	"bookify/pkg/requestcontext"
)

// Store is the persistence boundary for one token purpose.
type Store interface {
	Save(ctx context.Context, t *SecurityToken) error
	FindByValue(ctx context.Context, value string) (*SecurityToken, error)
	MarkUsed(ctx context.Context, id string) error
}

// Lifecycle issues, validates, and consumes tokens for a single purpose.
// Construct one per purpose over disjoint stores.
type Lifecycle struct {
	purpose Purpose
	store   Store
}

func NewLifecycle(purpose Purpose, store Store) *Lifecycle {
	return &Lifecycle{purpose: purpose, store: store}
}

// Purpose returns the token family this lifecycle manages.
func (l *Lifecycle) Purpose() Purpose { return l.purpose }

// Issue generates a 256-bit cryptographically random token, URL-safe encoded
// without padding, valid for the given duration, and persists it unused.
func (l *Lifecycle) Issue(ctx context.Context, userID string, validFor time.Duration) (*SecurityToken, error) {
	value, err := generateValue()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := requestcontext.Now(ctx)
	t := &SecurityToken{
		ID:        uuid.NewString(),
		Value:     value,
		UserID:    userID,
		ExpiresAt: now.Add(validFor),
		CreatedAt: now,
	}
	if err := l.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("persist %s token: %w", l.purpose, err)
	}
	return t, nil
}

// Validate returns the token for value only if it exists, is unused, and has
// not expired. Every other outcome (absent, consumed, expired) collapses to
// sentinel.ErrNotFound so callers probing token validity learn nothing about
// which case they hit.
func (l *Lifecycle) Validate(ctx context.Context, value string) (*SecurityToken, error) {
	if value == "" {
		return nil, sentinel.ErrNotFound
	}
	t, err := l.store.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find %s token: %w", l.purpose, err)
	}
	if !t.Live(requestcontext.Now(ctx)) {
		return nil, sentinel.ErrNotFound
	}
	return t, nil
}

// Consume marks the token used, enforcing single-use. Idempotent at the
// storage level; any later Validate of the same value returns absent.
func (l *Lifecycle) Consume(ctx context.Context, t *SecurityToken) error {
	if err := l.store.MarkUsed(ctx, t.ID); err != nil {
		return fmt.Errorf("consume %s token: %w", l.purpose, err)
	}
	t.Used = true
	return nil
}

func generateValue() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
