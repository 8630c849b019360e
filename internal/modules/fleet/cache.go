// README: Redis cache holding the available-car snapshot between change events.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "fleet:available"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redis *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: redis, ttl: ttl}
}

// Load returns the cached snapshot and whether one was present.
func (c *Cache) Load(ctx context.Context) ([]Vehicle, bool, error) {
	raw, err := c.redis.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var vehicles []Vehicle
	if err := json.Unmarshal(raw, &vehicles); err != nil {
		// A snapshot written by an older build; treat as a miss.
		return nil, false, nil
	}
	return vehicles, true, nil
}

func (c *Cache) Store(ctx context.Context, vehicles []Vehicle) error {
	raw, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, snapshotKey, raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, snapshotKey).Err()
}
