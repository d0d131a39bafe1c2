// Package cache is a small TTL cache used as a read-through layer in front of
// the store. It replaces the ambient per-process session cache of the previous
// implementation with an explicit, injected object.
package cache

import (
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

// Cache maps string keys to values with a per-entry time-to-live. Expired
// entries are dropped lazily on read.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{items: make(map[string]item)}
}

// Get returns the cached value for key, or false when absent or expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a Put may have raced the expiry.
		if cur, ok := c.items[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return it.value, true
}

// Put stores value under key for the given time-to-live.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Invalidate removes a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
