package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bookify/internal/auth/models"
	"bookify/pkg/platform/sentinel"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL matching the session expiry,
// so lapsed sessions disappear without a sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find session: %w: %v", sentinel.ErrUnavailable, err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
