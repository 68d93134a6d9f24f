package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Store is a byte cache shared by engine computations
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
	Delete(ctx context.Context, key string)
	Name() string
}

// Key builds a consistent cache key from its parts
func Key(namespace string, parts ...string) string {
	hash := md5.Sum([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("%s:%x", namespace, hash)
}

// GetJSON decodes a cached value into v. A corrupt entry is a miss.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) bool {
	data, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("Discarding undecodable cache entry", "store", s.Name(), "error", err)
		s.Delete(ctx, key)
		return false
	}
	return true
}

// SetJSON encodes v and stores it
func SetJSON(ctx context.Context, s Store, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Value not cacheable", "store", s.Name(), "error", err)
		return
	}
	s.Set(ctx, key, data)
}

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the cache item has expired
func (c *CacheItem) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// MemoryCache provides thread-safe caching with TTL
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*CacheItem
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a cache whose entries live for ttl. Close stops the
// background cleanup.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]*CacheItem),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}

	go c.cleanup(cleanupInterval(ttl))

	return c
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > 5*time.Minute {
		return 5 * time.Minute
	}
	return ttl
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, item := range c.items {
				if item.IsExpired() {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Name identifies the store in logs and health output
func (c *MemoryCache) Name() string { return "memory" }

// Get retrieves an item from the cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.IsExpired() {
		return nil, false
	}

	return item.Data, true
}

// Set stores an item in the cache
func (c *MemoryCache) Set(_ context.Context, key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes an item from the cache
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*CacheItem)
}

// Size returns the number of items in the cache
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0

	for _, item := range c.items {
		if item.IsExpired() {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"store":         c.Name(),
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}
