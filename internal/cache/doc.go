// Package cache provides a typed, bounded LRU cache.
//
// Cache wraps hashicorp/golang-lru's simplelru with generic keys and
// values, hit/miss/eviction counters and an eviction callback that lets
// owners release backend resources when an entry falls out.
//
//	c := cache.New[string, *Program](128, func(key string, p *Program) {
//		p.Release()
//	})
//	prog := c.GetOrCreate(key, compile)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
