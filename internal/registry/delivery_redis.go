package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizlive/quizlive-backend/internal/config"
)

// RedisDeliveryStore keeps delivery timestamps in Redis so any instance can
// resolve a participant's delivery time regardless of which instance pushed
// the question. Keys expire after ttl; one question round never outlives it.
type RedisDeliveryStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeliveryStore(rdb *redis.Client, ttl time.Duration) *RedisDeliveryStore {
	return &RedisDeliveryStore{rdb: rdb, ttl: ttl}
}

func (s *RedisDeliveryStore) Replace(ctx context.Context, eventID string, deliveredAt map[string]time.Time) error {
	if err := s.Clear(ctx, eventID); err != nil {
		return err
	}
	if len(deliveredAt) == 0 {
		return nil
	}
	pipe := s.rdb.Pipeline()
	for sid, t := range deliveredAt {
		key := config.CacheKey.DeliveredAtKey(eventID, sid)
		pipe.Set(ctx, key, t.UTC().Format(time.RFC3339Nano), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisDeliveryStore) Get(ctx context.Context, eventID, sessionID string) (time.Time, bool, error) {
	val, err := s.rdb.Get(ctx, config.CacheKey.DeliveredAtKey(eventID, sessionID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse delivered_at: %w", err)
	}
	return t, true, nil
}

func (s *RedisDeliveryStore) Clear(ctx context.Context, eventID string) error {
	pattern := config.CacheKey.DeliveredAtPattern(eventID)
	iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
