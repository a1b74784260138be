package render

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	cachestore "github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sidenote-app/sidenote/internal/config"
)

const cacheKeyPrefix = "sidenote:render:"

// htmlCache stores rendered comment bodies keyed by comment id and body
// hash. The body hash makes stale entries unreachable, so eviction is
// left entirely to the backend's TTL.
type htmlCache struct {
	cache *cache.Cache[string]
	ttl   time.Duration
}

func newHTMLCache(cfg *config.RenderConfig) *htmlCache {
	ttl := time.Hour
	if cfg != nil && cfg.CacheTTL > 0 {
		ttl = time.Duration(cfg.CacheTTL) * time.Minute
	}
	return &htmlCache{
		cache: newCacheInstanceByType(cfg),
		ttl:   ttl,
	}
}

func newCacheInstanceByType(cfg *config.RenderConfig) *cache.Cache[string] {
	if cfg != nil && cfg.CacheBackend == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return cache.New[string](redis_store.NewRedis(redisClient))
	}
	gocacheClient := gocache.New(gocache.NoExpiration, 10*time.Minute)
	return cache.New[string](go_store.NewGoCache(gocacheClient))
}

func (c *htmlCache) get(ctx context.Context, key string) (string, bool) {
	html, err := c.cache.Get(ctx, cacheKeyPrefix+key)
	if err != nil {
		return "", false
	}
	return html, true
}

func (c *htmlCache) set(ctx context.Context, key, html string) error {
	return c.cache.Set(ctx, cacheKeyPrefix+key, html, cachestore.WithExpiration(c.ttl))
}
