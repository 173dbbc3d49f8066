package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const codeKeyPrefix = "event_code:"

// Cache maps access codes to event IDs so the confirmation hot path can
// skip the code lookup query. Codes never change once generated, so a
// TTL-bound entry can only go stale by event deletion, and a stale hit
// falls through to storage anyway when the event row is fetched.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

// GetEventID returns the cached event ID for a code, or "" on miss.
func (c *Cache) GetEventID(ctx context.Context, code string) (string, error) {
	val, err := c.Client.Get(ctx, codeKeyPrefix+code).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *Cache) SetEventID(ctx context.Context, code, eventID string) error {
	return c.Client.Set(ctx, codeKeyPrefix+code, eventID, c.TTL).Err()
}

// Invalidate drops a code mapping, used when an event is deleted.
func (c *Cache) Invalidate(ctx context.Context, code string) error {
	return c.Client.Del(ctx, codeKeyPrefix+code).Err()
}
