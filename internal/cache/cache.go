package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 128

// Cache is a fixed-capacity LRU cache. Get and GetOrCreate move the entry
// to the front; inserting into a full cache evicts the least recently used
// entry and passes it to the eviction callback.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU
	capacity int
	onEvict  func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most capacity entries. onEvict may be
// nil.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[K, V]{capacity: capacity, onEvict: onEvict}
	// NewLRU only fails for a non-positive size.
	c.lru, _ = simplelru.NewLRU(capacity, c.evicted)
	return c
}

// evicted runs with c.mu held, from inside the simplelru call that
// dropped the entry.
func (c *Cache[K, V]) evicted(key, value interface{}) {
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(key.(K), value.(V))
	}
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lru.Get(key); ok {
		c.hits++
		return v.(V), true
	}
	c.misses++
	var zero V
	return zero, false
}

// Set stores a value, evicting the oldest entry if the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the cache lock. When create fails the error is
// returned and nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lru.Get(key); ok {
		c.hits++
		return v.(V), nil
	}
	c.misses++
	value, err := create()
	if err != nil {
		return value, err
	}
	c.lru.Add(key, value)
	return value, nil
}

// Contains reports whether key is cached without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Contains(key)
}

// Delete removes an entry, running the eviction callback.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Remove(key)
}

// Clear evicts every entry through the eviction callback.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when nothing was looked up.
	HitRate float64
	// Evictions counts entries dropped by capacity, Delete or Clear.
	Evictions uint64
}
