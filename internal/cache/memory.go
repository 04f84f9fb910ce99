package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache with lazy per-read expiry. No LRU
// eviction or background cleanup: GeometryCache entries are few and
// short-lived within one harness run.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]cacheItem
	defaultTTL time.Duration
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

func (i cacheItem) expired() bool {
	return !i.expiresAt.IsZero() && time.Now().After(i.expiresAt)
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache(opts *Options) *MemoryCache {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MemoryCache{
		items:      make(map[string]cacheItem),
		defaultTTL: opts.DefaultTTL,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || item.expired() {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	cp := make([]byte, len(value))
	copy(cp, value)

	c.mu.Lock()
	c.items[key] = cacheItem{value: cp, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error { return nil }
