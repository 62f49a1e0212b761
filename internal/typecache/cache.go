// Package typecache provides a concurrency-safe memoizing cache keyed by
// comparable values. It backs the type classifier and parser lookups, which
// are computed lazily and never invalidated (types are immutable for the
// process lifetime).
package typecache

import (
	"sync"
)

// Cache is a generic memoizing cache safe for concurrent use
type Cache[K comparable, V any] struct {
	items map[K]V
	mutex sync.RWMutex
}

// New creates a new empty cache
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, exists := c.items[key]
	return value, exists
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = value
}

// GetOrCompute returns the cached value for key, computing and storing it on
// first use. The compute function may run more than once under contention;
// the first stored value wins.
func (c *Cache[K, V]) GetOrCompute(key K, compute func(K) V) V {
	c.mutex.RLock()
	value, exists := c.items[key]
	c.mutex.RUnlock()
	if exists {
		return value
	}

	computed := compute(key)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if value, exists := c.items[key]; exists {
		return value
	}
	c.items[key] = computed
	return computed
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Len returns the number of cached items
func (c *Cache[K, V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]V)
}
