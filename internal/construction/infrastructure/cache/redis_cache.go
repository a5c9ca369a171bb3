// Package cache keeps computed building progress between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long progress may be served after an external write.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "sitework:progress:building:"

func progressKey(buildingID uuid.UUID) string {
	return keyPrefix + buildingID.String()
}

// RedisProgressCache stores progress as JSON under sitework:progress:building:{id}.
type RedisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressCache creates a Redis-backed progress cache. A zero ttl uses DefaultTTL.
func NewRedisProgressCache(client *redis.Client, ttl time.Duration) *RedisProgressCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisProgressCache{client: client, ttl: ttl}
}

// Get returns the cached progress, reporting false on a miss.
func (c *RedisProgressCache) Get(ctx context.Context, buildingID uuid.UUID) (*queries.BuildingProgressDTO, bool, error) {
	data, err := c.client.Get(ctx, progressKey(buildingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var dto queries.BuildingProgressDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		// a stale encoding is a miss
		return nil, false, nil
	}
	return &dto, true, nil
}

// Set stores progress with the cache TTL.
func (c *RedisProgressCache) Set(ctx context.Context, progress *queries.BuildingProgressDTO) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, progressKey(progress.ID), data, c.ttl).Err()
}

// Invalidate drops the cached progress of a building.
func (c *RedisProgressCache) Invalidate(ctx context.Context, buildingID uuid.UUID) error {
	return c.client.Del(ctx, progressKey(buildingID)).Err()
}

// Ping checks the Redis connection.
func (c *RedisProgressCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
