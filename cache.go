package kndweb

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
)

const cacheKeyPrefix = "kndweb:content:"

// cached is one TTL'd list. Readers take the read lock; only a reload takes
// the write lock, and the freshness check is repeated under it.
type cached[T any] struct {
	key string

	mu      sync.RWMutex
	val     []T
	loaded  bool
	fetched time.Time
}

func (e *cached[T]) valid(ttl time.Duration) bool {
	return e.loaded && time.Since(e.fetched) < ttl
}

func (e *cached[T]) reset() {
	e.mu.Lock()
	e.val, e.loaded = nil, false
	e.mu.Unlock()
}

func (e *cached[T]) get(ctx context.Context, cc *ContentCache, fetch func(context.Context) ([]T, error)) ([]T, error) {
	e.mu.RLock()
	if e.valid(cc.ttl) {
		val := e.val
		e.mu.RUnlock()
		return val, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid(cc.ttl) {
		return e.val, nil
	}
	if val, ok := sharedGet[T](ctx, cc, e.key); ok {
		e.val, e.loaded, e.fetched = val, true, time.Now()
		return val, nil
	}
	val, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if val == nil {
		val = []T{}
	}
	sharedSet(ctx, cc, e.key, val)
	e.val, e.loaded, e.fetched = val, true, time.Now()
	return val, nil
}

// ContentCache is a TTL cache of the public backend lists. When a redis
// client is given, entries are also shared through redis so every
// instance sees the same invalidation.
type ContentCache struct {
	api    *api.Client
	ttl    time.Duration
	rdb    *redis.Client
	logger *zap.Logger

	blogs      cached[api.Blog]
	solutions  cached[api.Solution]
	social     cached[api.SocialLink]
	categories cached[api.Category]
}

// NewContentCache creates a cache over client. rdb may be nil.
func NewContentCache(client *api.Client, ttl time.Duration, rdb *redis.Client, logger *zap.Logger) *ContentCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentCache{
		api:        client,
		ttl:        ttl,
		rdb:        rdb,
		logger:     logger,
		blogs:      cached[api.Blog]{key: cacheKeyPrefix + "blogs"},
		solutions:  cached[api.Solution]{key: cacheKeyPrefix + "solutions"},
		social:     cached[api.SocialLink]{key: cacheKeyPrefix + "social"},
		categories: cached[api.Category]{key: cacheKeyPrefix + "categories"},
	}
}

// Blogs returns every blog post, newest first.
func (cc *ContentCache) Blogs(ctx context.Context) ([]api.Blog, error) {
	return cc.blogs.get(ctx, cc, func(ctx context.Context) ([]api.Blog, error) {
		blogs, err := cc.api.Blogs().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		sortBlogs(blogs)
		return blogs, nil
	})
}

// Solutions returns every solution in backend order.
func (cc *ContentCache) Solutions(ctx context.Context) ([]api.Solution, error) {
	return cc.solutions.get(ctx, cc, func(ctx context.Context) ([]api.Solution, error) {
		return cc.api.Solutions().List(ctx, nil)
	})
}

// SocialLinks returns the footer links ordered by sort_order.
func (cc *ContentCache) SocialLinks(ctx context.Context) ([]api.SocialLink, error) {
	return cc.social.get(ctx, cc, func(ctx context.Context) ([]api.SocialLink, error) {
		links, err := cc.api.SocialLinks().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(links, func(i, j int) bool { return links[i].SortOrder < links[j].SortOrder })
		return links, nil
	})
}

// Categories returns the news categories.
func (cc *ContentCache) Categories(ctx context.Context) ([]api.Category, error) {
	return cc.categories.get(ctx, cc, cc.api.Categories)
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (cc *ContentCache) Invalidate(ctx context.Context) {
	cc.blogs.reset()
	cc.solutions.reset()
	cc.social.reset()
	cc.categories.reset()
	if cc.rdb == nil {
		return
	}
	keys := []string{cc.blogs.key, cc.solutions.key, cc.social.key, cc.categories.key}
	if err := cc.rdb.Del(ctx, keys...).Err(); err != nil {
		cc.logger.Warn("redis cache purge failed", zap.Error(err))
	}
}

func sharedGet[T any](ctx context.Context, cc *ContentCache, key string) ([]T, bool) {
	if cc.rdb == nil {
		return nil, false
	}
	raw, err := cc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			cc.logger.Warn("redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var val []T
	if err := json.Unmarshal(raw, &val); err != nil {
		cc.logger.Warn("redis cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return val, true
}

func sharedSet[T any](ctx context.Context, cc *ContentCache, key string, val []T) {
	if cc.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := cc.rdb.Set(ctx, key, raw, cc.ttl).Err(); err != nil {
		cc.logger.Warn("redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// sortBlogs orders posts newest first, breaking ties by id.
func sortBlogs(blogs []api.Blog) {
	sort.SliceStable(blogs, func(i, j int) bool {
		if !blogs[i].CreatedAt.Equal(blogs[j].CreatedAt) {
			return blogs[i].CreatedAt.After(blogs[j].CreatedAt)
		}
		return blogs[i].ID > blogs[j].ID
	})
}
