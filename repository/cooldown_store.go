package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCooldownStore implements the CooldownStore interface over Redis SETNX
// with a TTL, replacing in-process cooldown maps with a keyed store entry
type RedisCooldownStore struct {
	client *redis.Client
}

// NewRedisCooldownStore creates a new Redis-backed cooldown store
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

// TryAcquire sets the key if absent and returns true; returns false if the
// key is still live (the cooldown has not elapsed)
func (s *RedisCooldownStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire cooldown key %q: %w", key, err)
	}
	return acquired, nil
}
