package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// InvalidateIP removes the global and per-endpoint limits of exactly one
// client IP
func (rl *RateLimiter) InvalidateIP(ctx context.Context, ip string) error {
	return rl.invalidate(ctx, "*"+globEscape(ip), func(key string) bool {
		return keyIP(key) == ip
	})
}

// InvalidateAll removes all rate limit state
func (rl *RateLimiter) InvalidateAll(ctx context.Context) error {
	slog.Warn("Invalidating all rate limits")
	return rl.invalidate(ctx, "*", func(string) bool { return true })
}

// invalidate drops the fallback limiters whose key matches, then the matching
// Redis keys when Redis is in use. pattern narrows the Redis scan; match has
// the final say for both.
func (rl *RateLimiter) invalidate(ctx context.Context, pattern string, match func(key string) bool) error {
	rl.fallbackMutex.Lock()
	removed := 0
	for key := range rl.fallbackLimiters {
		if match(strings.TrimPrefix(key, keyPrefix)) {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	rl.fallbackMutex.Unlock()

	slog.Info("Invalidated in-memory rate limits", "pattern", pattern, "count", removed)

	if rl.redisLimiter == nil {
		return nil
	}

	// redis_rate stores its state under its own prefix
	return rl.deleteByPattern(ctx, redisRatePrefix+keyPrefix+pattern, func(key string) bool {
		return match(strings.TrimPrefix(key, redisRatePrefix+keyPrefix))
	})
}

// keyIP returns the client IP of an "ip:<ip>" or "endpoint:<name>:<ip>" key.
// Endpoint names never contain a colon; IPv6 addresses may.
func keyIP(key string) string {
	switch {
	case strings.HasPrefix(key, "ip:"):
		return strings.TrimPrefix(key, "ip:")
	case strings.HasPrefix(key, "endpoint:"):
		rest := strings.TrimPrefix(key, "endpoint:")
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			return rest[i+1:]
		}
	}
	return ""
}

var globReplacer = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func globEscape(s string) string {
	return globReplacer.Replace(s)
}

const redisRatePrefix = "rate:"

// deleteByPattern deletes the Redis keys matching a pattern using SCAN,
// keeping those match rejects
func (rl *RateLimiter) deleteByPattern(ctx context.Context, pattern string, match func(key string) bool) error {
	client := rl.redisClient.GetClient()
	if client == nil {
		return nil
	}

	var (
		cursor       uint64
		deletedCount int64
	)

	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		selected := keys[:0]
		for _, key := range keys {
			if match(key) {
				selected = append(selected, key)
			}
		}

		if len(selected) > 0 {
			deleted, err := client.Del(ctx, selected...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
			deletedCount += deleted
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Info("Deleted rate limit keys by pattern", "pattern", pattern, "count", deletedCount)
	return nil
}
