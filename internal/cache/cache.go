// Package cache holds rendered public reads (categories, approved listings).
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"bizdir/internal/config"
	applog "bizdir/internal/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache is a byte cache. Failures never surface: a broken cache behaves like a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string)
	Close() error
}

// Key prefixes for public reads.
const (
	PrefixCategories = "categories:"
	PrefixListing    = "listing:"
	PrefixListings   = "listings:"
)

// New picks the backend named by cfg.Type.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return NewInMemoryCache(cfg.TTL), nil
	case "redis":
		return NewRedisCache(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}

// GetJSON decodes a cached value into T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		applog.FromContext(ctx).Warn("cache decode failed", "key", key, "err", err)
		return out, false
	}
	return out, true
}

func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		applog.FromContext(ctx).Warn("cache encode failed", "key", key, "err", err)
		return
	}
	c.Set(ctx, key, raw, ttl)
}
