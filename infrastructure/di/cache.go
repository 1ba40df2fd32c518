package di

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often expired entries get swept out.
const sweepInterval = time.Minute

// InMemoryCache is a process-local cache with per-entry TTLs. It backs
// the query caching middleware in single-instance deployments; a Lambda
// fleet would swap in something shared.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// NewInMemoryCache creates an empty cache and starts its sweeper.
func NewInMemoryCache() *InMemoryCache {
	cache := &InMemoryCache{entries: make(map[string]cacheEntry)}
	go cache.sweep()
	return cache
}

// Get retrieves a value from cache. Expired entries read as misses.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key for ttl seconds, replacing any previous
// value.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete removes the value under key.
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear drops every entry.
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	return nil
}

func (c *InMemoryCache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if entry.expired(now) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
