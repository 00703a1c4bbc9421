// README: Session store backed by Redis string keys with a TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tripKeyPattern = "session:%s:trip"
	// Idle conversations are forgotten after a day.
	DefaultTTL = 24 * time.Hour
)

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Trip, bool, error) {
	raw, err := s.redis.Get(ctx, tripKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Trip{}, false, nil
	}
	if err != nil {
		return Trip{}, false, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	var t Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return Trip{}, false, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return t, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, trip Trip) error {
	if trip.UpdatedAt.IsZero() {
		trip.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	return s.redis.Set(ctx, tripKey(sessionID), raw, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, tripKey(sessionID)).Err()
}

func tripKey(sessionID string) string {
	return fmt.Sprintf(tripKeyPattern, sessionID)
}
