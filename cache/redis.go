package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jonwraymond/websearch/observe"
)

// RedisClient is the subset of redis.Cmdable used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisConfig configures the connection used by NewRedisClient.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a go-redis client for cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisCache stores entries in Redis. Entries are written with the policy's
// max age as their expiry, so Redis itself performs the sweep.
type RedisCache struct {
	client RedisClient
	prefix string
	policy Policy
	logger observe.Logger
}

// NewRedisCache creates a Redis-backed cache. prefix namespaces every key.
func NewRedisCache(client RedisClient, prefix string, policy Policy, logger observe.Logger) *RedisCache {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		policy: policy,
		logger: logger,
	}
}

func (c *RedisCache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get retrieves a value. Redis errors are logged and reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		c.logger.Debug(ctx, "cache miss", observe.Field{Key: "cache_key", Value: key})
		return nil, false
	}
	if err != nil {
		c.logger.Warn(ctx, "cache lookup failed",
			observe.Field{Key: "cache_key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, false
	}
	c.logger.Debug(ctx, "cache hit", observe.Field{Key: "cache_key", Value: key})
	return val, true
}

// Set stores value with the policy max age as expiry.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if !c.policy.ShouldCache() {
		return nil
	}
	return c.client.Set(ctx, c.namespaced(key), value, c.policy.MaxAge).Err()
}

// Delete removes a value. Idempotent - no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.namespaced(key)).Err()
}

// Ping verifies the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ Cache = (*RedisCache)(nil)
