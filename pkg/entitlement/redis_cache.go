package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache stores one hash per workspace so invalidation is a single DEL.
// The hash TTL is refreshed on every write, bounding staleness the same way
// the in-memory backend does.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logrus.Entry
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logrus.Entry) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "taskvine:entitlements:v1",
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisCache) hashKey(workspaceID uuid.UUID) string {
	return c.prefix + ":" + workspaceID.String()
}

func (c *RedisCache) Get(ctx context.Context, workspaceID uuid.UUID, key string) (string, bool) {
	result, err := c.client.HGet(ctx, c.hashKey(workspaceID), key).Result()
	if err != nil {
		if err != redis.Nil && c.log != nil {
			c.log.WithError(err).Warn("entitlement: redis cache read failed")
		}
		return "", false
	}
	return result, true
}

func (c *RedisCache) Set(ctx context.Context, workspaceID uuid.UUID, key, value string) {
	hashKey := c.hashKey(workspaceID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	pipe.Expire(ctx, hashKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil && c.log != nil {
		c.log.WithError(err).Warn("entitlement: redis cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) {
	if err := c.client.Del(ctx, c.hashKey(workspaceID)).Err(); err != nil && c.log != nil {
		c.log.WithError(err).Warn("entitlement: redis cache invalidate failed")
	}
}
