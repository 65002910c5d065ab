package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizlive/quizlive-backend/internal/config"
)

// RedisStore keys sessions under admin_session:{jti} with the session TTL,
// so revocation is shared across instances and expiry needs no sweeper.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore over an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.AdminSessionKey(jti), "1", ttl).Err()
}

func (s *RedisStore) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.AdminSessionKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, config.CacheKey.AdminSessionKey(jti)).Err()
}
