package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Key builds a cache key from an indicator type and its value,
// e.g. Key("url", "https://example.com/Path") == "url:https://example.com/Path".
// The value is trimmed but not case-folded; callers canonicalize it first.
func Key(kind, value string) string {
	return kind + ":" + strings.TrimSpace(value)
}

// Cache is a size-bounded, in-process cache whose entries expire after a fixed
// TTL. Concurrent GetOrLoad calls for the same key share one loader invocation.
type Cache[V any] struct {
	ttl   time.Duration
	lru   *expirable.LRU[string, V]
	group singleflight.Group
}

// New returns a cache holding at most size entries (0 means unbounded) for ttl.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{ttl: ttl, lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *Cache[V]) TTL() time.Duration { return c.ttl }

func (c *Cache[V]) Get(key string) (V, bool) { return c.lru.Get(key) }

func (c *Cache[V]) Put(key string, v V) { c.lru.Add(key, v) }

// Len counts stored entries, including expired ones not yet evicted.
func (c *Cache[V]) Len() int { return c.lru.Len() }

// Purge drops every entry.
func (c *Cache[V]) Purge() { c.lru.Purge() }

// GetOrLoad returns the cached value for key, or runs load once across all
// concurrent callers and stores its result. A loader that returns store=false
// has its value returned but not cached. hit reports a cache hit.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (v V, store bool, err error)) (v V, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, store, err := load(ctx)
		if err != nil {
			return v, err
		}
		if store {
			c.Put(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}
