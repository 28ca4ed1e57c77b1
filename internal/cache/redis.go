package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"bizdir/internal/config"
	applog "bizdir/internal/log"
)

// RedisCache shares cached reads between instances.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(ctx context.Context, cfg config.CacheConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if cfg.RedisPassword != "" {
		opt.Password = cfg.RedisPassword
	}
	if cfg.RedisDB > 0 {
		opt.DB = cfg.RedisDB
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	applog.FromContext(ctx).Info("redis connected", "url", opt.Addr)
	return &RedisCache{rdb: rdb, ttl: cfg.TTL}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			applog.FromContext(ctx).Warn("redis get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		applog.FromContext(ctx).Warn("redis set failed", "key", key, "err", err)
	}
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			applog.FromContext(ctx).Warn("redis scan failed", "prefix", prefix, "err", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				applog.FromContext(ctx).Warn("redis del failed", "prefix", prefix, "err", err)
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

func (c *RedisCache) Close() error { return c.rdb.Close() }
