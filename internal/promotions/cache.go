package promotions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
	"github.com/minhvub/coffeeshop-backend/pkg/redis"
)

// ActiveCache caches the currently-active promotion set.
type ActiveCache interface {
	Get(ctx context.Context) ([]models.Promotion, bool)
	Set(ctx context.Context, promotions []models.Promotion)
	Invalidate(ctx context.Context)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewRedisCache caches active promotions in Redis with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) ActiveCache {
	return &redisCache{client: client, ttl: ttl, logg: logg}
}

func (c *redisCache) key() string {
	return c.client.CacheKey("promotions", "active")
}

func (c *redisCache) Get(ctx context.Context) ([]models.Promotion, bool) {
	raw, err := c.client.Get(ctx, c.key())
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "active promotion cache read failed")
		}
		return nil, false
	}

	var promotions []models.Promotion
	if err := json.Unmarshal([]byte(raw), &promotions); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "active promotion cache decode failed")
		}
		c.Invalidate(ctx)
		return nil, false
	}
	return promotions, true
}

func (c *redisCache) Set(ctx context.Context, promotions []models.Promotion) {
	payload, err := json.Marshal(promotions)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "active promotion cache encode failed")
		}
		return
	}
	if err := c.client.Set(ctx, c.key(), string(payload), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "active promotion cache write failed")
	}
}

func (c *redisCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, c.key()); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "active promotion cache invalidation failed")
	}
}

type noopCache struct{}

// NewNoopCache returns a cache that never stores anything. Used when
// Redis is disabled and in tests.
func NewNoopCache() ActiveCache {
	return noopCache{}
}

func (noopCache) Get(context.Context) ([]models.Promotion, bool) { return nil, false }
func (noopCache) Set(context.Context, []models.Promotion)        {}
func (noopCache) Invalidate(context.Context)                     {}
