// Package program caches compiled backend programs by pipeline key.
package program

import (
	"fmt"

	"github.com/gogpu/gpucanvas/internal/cache"
	"github.com/gogpu/gpucanvas/internal/logging"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/render"
)

// DefaultCapacity is the number of programs kept by default.
const DefaultCapacity = cache.DefaultCapacity

// Stats reports cache activity.
type Stats = cache.Stats

// Cache maps pipeline keys to compiled programs. It is owned by one
// context. Evicted programs are released as they leave the cache, or when
// the last hold ends if a render pass may still reference them.
type Cache struct {
	device render.Device
	lru    *cache.Cache[string, render.Program]

	holds   int
	retired []render.Program
}

// NewCache returns a cache compiling through device. A non-positive
// capacity selects DefaultCapacity.
func NewCache(device render.Device, capacity int) *Cache {
	c := &Cache{device: device}
	c.lru = cache.New[string, render.Program](capacity, func(_ string, p render.Program) {
		c.retire(p)
	})
	return c
}

func (c *Cache) retire(p render.Program) {
	if c.holds > 0 {
		c.retired = append(c.retired, p)
		return
	}
	p.Release()
}

// Hold defers releasing evicted programs until the returned function is
// called. Executing tasks hold the cache while their render passes are
// open. Holds nest.
func (c *Cache) Hold() (done func()) {
	c.holds++
	var once bool
	return func() {
		if once {
			return
		}
		once = true
		c.holds--
		if c.holds > 0 {
			return
		}
		retired := c.retired
		c.retired = nil
		for _, p := range retired {
			p.Release()
		}
		if len(retired) > 0 {
			logging.Logger().Debug("held programs released", "count", len(retired))
		}
	}
}

// Program returns the program for p, compiling it on a miss.
func (c *Cache) Program(p *pipeline.Pipeline) (render.Program, error) {
	key := p.Key()
	return c.lru.GetOrCreate(key, func() (render.Program, error) {
		prog, err := c.device.CompileProgram(p)
		if err != nil {
			return nil, fmt.Errorf("program: compile: %w", err)
		}
		logging.Logger().Debug("program compiled",
			"geometry", p.Geometry().ClassID().String(),
			"fragments", len(p.Fragments()),
			"keyBytes", len(key))
		return prog, nil
	})
}

// Len returns the number of cached programs.
func (c *Cache) Len() int { return c.lru.Len() }

// Capacity returns the maximum number of cached programs.
func (c *Cache) Capacity() int { return c.lru.Capacity() }

// Stats returns hit, miss and eviction counts.
func (c *Cache) Stats() Stats { return c.lru.Stats() }

// ReleaseAll releases every cached program.
func (c *Cache) ReleaseAll() {
	c.lru.Clear()
}
