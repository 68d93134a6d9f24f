package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
)

const keyPrefix = "ratelimit:"

// Config holds rate limiter configuration
type Config struct {
	PerMinute       int           // requests per minute per client IP
	BurstMultiplier int           // fallback burst = limit * multiplier
	CleanupInterval time.Duration // how often idle fallback limiters are dropped
	IdleTimeout     time.Duration // a fallback limiter idle this long is dropped
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		PerMinute:       120,
		BurstMultiplier: 1,
		CleanupInterval: 10 * time.Minute,
		IdleTimeout:     30 * time.Minute,
	}
}

// Rate is a limit of requests per period
type Rate struct {
	Limit  int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides distributed rate limiting with Redis and an in-memory
// token bucket fallback
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      *monitoring.Metrics

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter. A nil or disabled redisClient
// selects in-memory limiting only.
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	if config.BurstMultiplier < 1 {
		config.BurstMultiplier = 1
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		config:           config,
		metrics:          metrics,
		fallbackLimiters: make(map[string]*fallbackEntry),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Warn("Redis unavailable, using in-memory rate limiting only")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

// AllowIP checks the per-minute limit of a client IP
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	return rl.Allow(ctx, "ip:"+ip, Rate{Limit: rl.config.PerMinute, Period: time.Minute})
}

// Allow checks key against r, using Redis when available
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if r.Limit <= 0 || r.Period <= 0 {
		return nil, fmt.Errorf("invalid rate %d/%s", r.Limit, r.Period)
	}
	key = keyPrefix + key

	if rl.redisLimiter != nil {
		result, err := rl.allowRedis(ctx, key, r)
		if err == nil {
			return result, nil
		}
		slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitRedisError()
		}
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, r), nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.Limit,
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		every := rate.Limit(float64(r.Limit) / r.Period.Seconds())
		entry = &fallbackEntry{limiter: rate.NewLimiter(every, r.Limit*rl.config.BurstMultiplier)}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	rl.fallbackMutex.Unlock()

	result := &Result{
		Limit:   r.Limit,
		ResetAt: now.Add(r.Period),
	}

	if entry.limiter.AllowN(now, 1) {
		result.Allowed = true
		if remaining := int(entry.limiter.TokensAt(now)); remaining > 0 {
			result.Remaining = remaining
		}
		return result
	}

	reservation := entry.limiter.ReserveN(now, 1)
	result.RetryAfter = reservation.DelayFrom(now)
	reservation.CancelAt(now)
	if result.RetryAfter <= 0 {
		result.RetryAfter = time.Second
	}
	result.ResetAt = now.Add(result.RetryAfter)

	return result
}

// cleanupFallbackLimiters drops limiters idle longer than the idle timeout
func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			if n := rl.evictIdle(now); n > 0 {
				slog.Debug("Cleaned up fallback rate limiters", "count", n)
			}
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	evicted := 0
	for key, entry := range rl.fallbackLimiters {
		if now.Sub(entry.lastSeen) > rl.config.IdleTimeout {
			delete(rl.fallbackLimiters, key)
			evicted++
		}
	}
	return evicted
}

// Config returns the active configuration
func (rl *RateLimiter) Config() Config {
	return rl.config
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":     rl.redisLimiter != nil,
		"fallback_limiters": fallbackCount,
		"per_minute":        rl.config.PerMinute,
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
	}

	return stats
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}
