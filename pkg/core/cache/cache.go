package cache

import (
	"sync"
	"time"
)

// CacheItem represents an item stored in the cache, containing a value and its expiration time.
type CacheItem[T any] struct {
	Value      T
	Expiration time.Time
}

// Cache is a generic, thread-safe TTL cache that stores values with string keys.
type Cache[T any] struct {
	data map[string]CacheItem[T]
	mu   sync.RWMutex
	ttl  time.Duration
}

// NewCache initializes and returns a new Cache with a specified default TTL.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		data: make(map[string]CacheItem[T]),
		ttl:  ttl,
	}
}

// Get retrieves a value from the cache by its key.
// It returns the cached value and true if the key exists and has not expired; otherwise, it returns the zero value and false.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(item.Expiration) {
		var zero T
		return zero, false
	}
	return item.Value, true
}

// Set adds or updates a value in the cache with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = CacheItem[T]{
		Value:      value,
		Expiration: time.Now().Add(c.ttl),
	}
}

// Delete removes an item from the cache by its key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}
