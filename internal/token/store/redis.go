package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bookify/internal/token"
	"bookify/pkg/platform/sentinel"
)

// RedisStore persists tokens in Redis, keyed by value with a TTL matching the
// token expiry, plus an id index so MarkUsed can find the record. Expired
// tokens vanish on their own; the Live check still guards the window between
// logical and physical expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis builds a store with the given key prefix; use distinct prefixes
// per purpose (e.g. "verify", "reset") to keep the families disjoint.
func NewRedis(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) valueKey(value string) string { return s.prefix + ":v:" + value }
func (s *RedisStore) idKey(id string) string       { return s.prefix + ":id:" + id }

func (s *RedisStore) Save(ctx context.Context, t *token.SecurityToken) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	ok, err := s.client.SetNX(ctx, s.valueKey(t.Value), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("save token: %w: %v", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("token value: %w", sentinel.ErrConflict)
	}
	if err := s.client.Set(ctx, s.idKey(t.ID), t.Value, ttl).Err(); err != nil {
		return fmt.Errorf("index token: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) FindByValue(ctx context.Context, value string) (*token.SecurityToken, error) {
	data, err := s.client.Get(ctx, s.valueKey(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("token: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find token: %w: %v", sentinel.ErrUnavailable, err)
	}

	var t token.SecurityToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &t, nil
}

// MarkUsed flips the used flag under a WATCH loop so two concurrent consumes
// of the same token cannot both observe it unused.
func (s *RedisStore) MarkUsed(ctx context.Context, id string) error {
	value, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
		}
		return fmt.Errorf("resolve token id: %w: %v", sentinel.ErrUnavailable, err)
	}

	key := s.valueKey(value)
	const maxRetries = 4

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			var t token.SecurityToken
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
			t.Used = true

			updated, err := json.Marshal(&t)
			if err != nil {
				return err
			}

			ttl, err := tx.TTL(ctx, key).Result()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = time.Second
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue // lost the race, retry
		case errors.Is(err, redis.Nil):
			return fmt.Errorf("token %s: %w", id, sentinel.ErrNotFound)
		default:
			return fmt.Errorf("mark token used: %w: %v", sentinel.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("mark token used: too many conflicts: %w", sentinel.ErrUnavailable)
}
