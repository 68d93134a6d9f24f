package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 500 * time.Millisecond

// RedisCache stores entries in Redis so cohort reports are shared across
// server instances. Any Redis failure degrades to the in-memory fallback.
type RedisCache struct {
	client   *redis.Client
	fallback *MemoryCache
	prefix   string
	ttl      time.Duration
	errors   int64
}

// NewRedisCache wraps client. A nil client serves everything from the fallback.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, fallback *MemoryCache) *RedisCache {
	if fallback == nil {
		fallback = NewMemoryCache(ttl)
	}
	return &RedisCache{
		client:   client,
		fallback: fallback,
		prefix:   prefix,
		ttl:      ttl,
	}
}

// Name identifies the store in logs and health output
func (r *RedisCache) Name() string {
	if r.client == nil {
		return "redis(disabled)"
	}
	return "redis"
}

func (r *RedisCache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *RedisCache) degrade(op string, err error) {
	atomic.AddInt64(&r.errors, 1)
	slog.Warn("Redis cache unavailable, using in-memory fallback", "operation", op, "error", err)
}

// Get reads from Redis, then from the fallback
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.client != nil {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()

		data, err := r.client.Get(ctx, r.key(key)).Bytes()
		switch {
		case err == nil:
			return data, true
		case !errors.Is(err, redis.Nil):
			r.degrade("get", err)
		}
	}
	return r.fallback.Get(ctx, key)
}

// Set writes to Redis and always to the fallback, so a later outage still
// serves recent entries
func (r *RedisCache) Set(ctx context.Context, key string, data []byte) {
	r.fallback.Set(ctx, key, data)
	if r.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		r.degrade("set", err)
	}
}

// Delete removes the key from both tiers
func (r *RedisCache) Delete(ctx context.Context, key string) {
	r.fallback.Delete(ctx, key)
	if r.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.degrade("delete", err)
	}
}

// Stats returns tier statistics
func (r *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"store":        r.Name(),
		"redis_errors": atomic.LoadInt64(&r.errors),
		"fallback":     r.fallback.Stats(),
	}
}

// Close stops the fallback cleanup. The Redis client is owned by the caller.
func (r *RedisCache) Close() error {
	return r.fallback.Close()
}
