package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	versionKey = "menu:ver"
	entryTTL   = 5 * time.Minute
)

// MenuCache is a best-effort Redis cache for menu listings. Writes bump a
// version counter instead of deleting keys, so stale entries simply age out.
type MenuCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewMenuCache(client *redis.Client, log *zap.Logger) *MenuCache {
	return &MenuCache{client: client, log: log}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Get loads a cached value into dest; false means miss (or any Redis error,
// which callers treat the same way).
func (c *MenuCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, c.versionedKey(ctx, key)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("Corrupt cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *MenuCache) Set(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.versionedKey(ctx, key), raw, entryTTL).Err(); err != nil {
		c.log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate bumps the version counter so all existing entries stop matching.
func (c *MenuCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", zap.Error(err))
	}
}

func (c *MenuCache) versionedKey(ctx context.Context, key string) string {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("menu:v%d:%s", ver, key)
}
