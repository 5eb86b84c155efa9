// Package cache provides a small time-boxed cache with get-or-fetch
// semantics. Upstream API responses are cached for a few seconds so the
// pipeline's polling cadence never turns into a request storm; the cache
// lives outside the core pipeline as a collaborator dependency.
package cache

import (
	"context"
	"sync"
	"time"
)

// defaultTTL matches the upstream provider's freshness window.
const defaultTTL = 5 * time.Second

// Option applies a configuration option to a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithTTL sets how long a fetched value stays fresh.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Tests pin it.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache is a TTL-bounded map with single-fetch fill per expired key.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New creates an empty cache.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached value for key when fresh, otherwise calls
// fetch, stores the result, and returns it. A failed fetch caches nothing,
// so the next caller retries.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, fetch func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expires) {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = &entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops a key immediately.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries, fresh or stale.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
