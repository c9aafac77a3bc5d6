package text

import (
	"math"

	"github.com/gogpu/gpucanvas/internal/cache"
	"github.com/gogpu/gpucanvas/path"
)

// DefaultGlyphCacheSize is the number of outlines a GlyphCache keeps by
// default.
const DefaultGlyphCacheSize = 1024

// CacheStats reports glyph cache activity.
type CacheStats = cache.Stats

type glyphKey struct {
	typeface uint64
	glyph    GlyphID
	size     uint64
	bold     bool
	italic   bool
}

// GlyphCache keeps recently used glyph outlines. Cached paths are shared
// and must not be modified.
//
// GlyphCache is safe for concurrent use.
type GlyphCache struct {
	lru *cache.Cache[glyphKey, *path.Path]
}

// NewGlyphCache returns a cache holding at most size outlines. A
// non-positive size selects DefaultGlyphCacheSize.
func NewGlyphCache(size int) *GlyphCache {
	if size <= 0 {
		size = DefaultGlyphCacheSize
	}
	return &GlyphCache{lru: cache.New[glyphKey, *path.Path](size, nil)}
}

// Path returns the outline of id in f, loading it on a miss.
func (c *GlyphCache) Path(f Font, id GlyphID) (*path.Path, error) {
	key := glyphKey{
		typeface: f.Typeface.ID(),
		glyph:    id,
		size:     math.Float64bits(f.Size),
		bold:     f.FauxBold,
		italic:   f.FauxItalic,
	}
	return c.lru.GetOrCreate(key, func() (*path.Path, error) {
		return f.GlyphPath(id)
	})
}

// Len returns the number of cached outlines.
func (c *GlyphCache) Len() int { return c.lru.Len() }

// Stats reports cache activity.
func (c *GlyphCache) Stats() CacheStats { return c.lru.Stats() }

// Clear drops every cached outline.
func (c *GlyphCache) Clear() { c.lru.Clear() }
