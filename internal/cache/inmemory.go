package cache

import (
	"context"
	"strings"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache is a per-process cache backed by go-cache.
type InMemoryCache struct {
	cache *goCache.Cache
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{cache: goCache.New(ttl, DefaultCleanupInterval)}
}

func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set with ttl 0 uses the cache default.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}

func (c *InMemoryCache) DeletePrefix(_ context.Context, prefix string) {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

func (c *InMemoryCache) Close() error { return nil }
