package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	domain "github.com/open-builders/gws-backend/internal/domain/user"
)

// UserCache is a read-through cache in front of the profile store.
// Only found profiles are cached; redis failures fall back to the store.
type UserCache struct {
	next   domain.Repository
	client redis.UniversalClient
	ttl    time.Duration
}

func NewUserCache(next domain.Repository, client redis.UniversalClient, ttl time.Duration) *UserCache {
	return &UserCache{next: next, client: client, ttl: ttl}
}

func (c *UserCache) keyByID(id string) string { return "gws:user:" + id }

// GetByID returns the cached profile or loads and caches it.
func (c *UserCache) GetByID(ctx context.Context, id string) (*domain.User, error) {
	b, err := c.client.Get(ctx, c.keyByID(id)).Bytes()
	switch {
	case err == nil:
		var u domain.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
	}

	u, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, u)
	return u, nil
}

func (c *UserCache) set(ctx context.Context, u *domain.User) {
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.keyByID(u.ID), b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID).Msg("user cache write failed")
	}
}

// Invalidate removes the cached profile.
func (c *UserCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.keyByID(id)).Err()
}
