package cache

import (
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements in-memory caching with optional expiry
type MemoryCache struct {
	cache  *gocache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewMemoryCache creates a new memory cache. A zero TTL keeps entries until invalidated.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (string, bool) {
	if val, found := c.cache.Get(key); found {
		c.hits.Add(1)
		return val.(string), true
	}
	c.misses.Add(1)
	return "", false
}

// Set stores a value with the default TTL
func (c *MemoryCache) Set(key string, value string) {
	c.cache.SetDefault(key, value)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// DeletePrefix removes every entry whose key starts with prefix and returns how many
func (c *MemoryCache) DeletePrefix(prefix string) int {
	n := 0
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
			n++
		}
	}
	return n
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Stats returns entry count and hit/miss counters
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Entries: c.cache.ItemCount(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Nop never stores anything; used when caching is disabled
type Nop struct{}

func (Nop) Get(string) (string, bool) { return "", false }
func (Nop) Set(string, string) {}
func (Nop) Delete(string) {}
func (Nop) DeletePrefix(string) int { return 0 }
func (Nop) Clear() {}
func (Nop) Stats() Stats { return Stats{} }
