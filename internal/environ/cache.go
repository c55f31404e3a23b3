package environ

import (
	"context"
	"sync"
	"time"
)

const userKey = "\x00user"

type cacheEntry struct {
	value     any
	ok        bool
	expiresAt time.Time
}

// CachingProvider wraps any Provider and caches lookups, misses included,
// for a TTL.
type CachingProvider struct {
	inner   Provider
	ttl     time.Duration
	maxSize int

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewCachingProvider(p Provider, ttl time.Duration, maxSize int) *CachingProvider {
	return &CachingProvider{
		inner:   p,
		ttl:     ttl,
		maxSize: maxSize,
		cache:   make(map[string]cacheEntry),
	}
}

func (c *CachingProvider) UserID(ctx context.Context) (string, bool) {
	v, ok := c.lookup(userKey, func() (any, bool) {
		return c.inner.UserID(ctx)
	})
	s, _ := v.(string)
	return s, ok
}

func (c *CachingProvider) Var(ctx context.Context, name string) (any, bool) {
	return c.lookup(name, func() (any, bool) {
		return c.inner.Var(ctx, name)
	})
}

// Invalidate drops a cached variable; an empty name drops the user identity.
func (c *CachingProvider) Invalidate(name string) {
	if name == "" {
		name = userKey
	}
	c.mu.Lock()
	delete(c.cache, name)
	c.mu.Unlock()
}

// Close closes the wrapped provider.
func (c *CachingProvider) Close() error {
	return Close(c.inner)
}

func (c *CachingProvider) lookup(key string, load func() (any, bool)) (any, bool) {
	c.mu.RLock()
	if e, ok := c.cache[key]; ok && time.Now().Before(e.expiresAt) {
		c.mu.RUnlock()
		return e.value, e.ok
	}
	c.mu.RUnlock()

	v, ok := load()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		c.evictOldest()
	}
	c.cache[key] = cacheEntry{
		value:     v,
		ok:        ok,
		expiresAt: time.Now().Add(c.ttl),
	}
	return v, ok
}

func (c *CachingProvider) evictOldest() {
	var oldest string
	var oldestTime time.Time
	for key, e := range c.cache {
		if oldest == "" || e.expiresAt.Before(oldestTime) {
			oldest = key
			oldestTime = e.expiresAt
		}
	}
	if oldest != "" {
		delete(c.cache, oldest)
	}
}
