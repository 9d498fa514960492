package eligibility

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache remembers positive eligibility answers. Negative answers are never stored,
// so a stale entry can only keep a user eligible inside the same window.
type Cache interface {
	IsEligible(ctx context.Context, key string) (bool, error)
	MarkEligible(ctx context.Context, key string, ttl time.Duration) error
}

func cacheKey(w Window, handle string) string {
	return "gws:eligible:" + w.StartDate() + ":" + strings.ToLower(handle)
}

// RedisCache stores entries as plain keys with a TTL.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) IsEligible(ctx context.Context, key string) (bool, error) {
	err := c.client.Get(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) MarkEligible(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, key, "1", ttl).Err()
}
