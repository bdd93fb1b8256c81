package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

// ErrCacheMiss is returned by Cache.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a Cache on a redis server.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CacheObserver is told about every lookup.
type CacheObserver interface {
	CacheResult(hit bool)
}

const (
	DefaultCacheTTL = 10 * time.Minute
	cacheTimeout    = 2 * time.Second
)

// CachedSearcher serves repeated questions from cache. Cache failures are
// logged and the search goes through uncached.
type CachedSearcher struct {
	next  graph.WebSearcher
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
	obs   CacheObserver
}

func NewCachedSearcher(next graph.WebSearcher, cache Cache, ttl time.Duration, log *zap.Logger, obs CacheObserver) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSearcher{next: next, cache: cache, ttl: ttl, log: log, obs: obs}
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return "websearch:" + hex.EncodeToString(sum[:])
}

func (c *CachedSearcher) Search(ctx context.Context, question string) ([]string, error) {
	key := cacheKey(question)

	if passages, ok := c.lookup(ctx, key); ok {
		c.observe(true)
		return passages, nil
	}
	c.observe(false)

	passages, err := c.next.Search(ctx, question)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(passages)
	if err == nil {
		setCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
		err = c.cache.Set(setCtx, key, string(data), c.ttl)
		cancel()
	}
	if err != nil {
		c.log.Warn("failed to cache search results", zap.Error(err))
	}
	return passages, nil
}

func (c *CachedSearcher) lookup(ctx context.Context, key string) ([]string, bool) {
	getCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	data, err := c.cache.Get(getCtx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("search cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var passages []string
	if err := json.Unmarshal([]byte(data), &passages); err != nil {
		c.log.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return passages, true
}

func (c *CachedSearcher) observe(hit bool) {
	if c.obs != nil {
		c.obs.CacheResult(hit)
	}
}
