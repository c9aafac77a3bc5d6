package gpucanvas

import (
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/program"
	"github.com/gogpu/gpucanvas/text"
)

// ContextOption configures a Context during creation.
//
// Example:
//
//	ctx, err := gpucanvas.NewContext(device,
//	    gpucanvas.WithProgramCacheCapacity(256),
//	    gpucanvas.WithDebugChecks(true))
type ContextOption func(*contextOptions)

type contextOptions struct {
	programCacheCapacity int
	debugChecks          bool
	glyphCacheSize       int
}

func defaultContextOptions() contextOptions {
	return contextOptions{
		programCacheCapacity: program.DefaultCapacity,
		glyphCacheSize:       text.DefaultGlyphCacheSize,
	}
}

// WithProgramCacheCapacity sets how many compiled programs the context
// keeps. The least recently used program is released when the cache is
// full. Values below 1 keep the default.
func WithProgramCacheCapacity(n int) ContextOption {
	return func(o *contextOptions) {
		if n > 0 {
			o.programCacheCapacity = n
		}
	}
}

// WithDebugChecks makes every flush check the backend for errors after
// each state change and log them at Warn level. Rendering results are
// unchanged.
func WithDebugChecks(enabled bool) ContextOption {
	return func(o *contextOptions) {
		o.debugChecks = enabled
	}
}

// WithGlyphCacheSize sets how many glyph outlines each font keeps when
// drawn through this context. Values below 1 keep the default.
func WithGlyphCacheSize(n int) ContextOption {
	return func(o *contextOptions) {
		if n > 0 {
			o.glyphCacheSize = n
		}
	}
}

// SurfaceOption configures a Surface during creation.
//
// Example:
//
//	surface, err := ctx.NewSurface(800, 600,
//	    gpucanvas.WithSampleCount(4),
//	    gpucanvas.WithOrigin(gpu.OriginBottomLeft))
type SurfaceOption func(*surfaceOptions)

type surfaceOptions struct {
	sampleCount int
	origin      gpu.Origin
	mipmapped   bool
	format      gpu.PixelFormat
}

func defaultSurfaceOptions() surfaceOptions {
	return surfaceOptions{
		sampleCount: 1,
		origin:      gpu.OriginTopLeft,
		format:      gpu.FormatRGBA8,
	}
}

// WithSampleCount requests a multisampled render target. Draws into it use
// MSAA instead of coverage antialiasing.
func WithSampleCount(n int) SurfaceOption {
	return func(o *surfaceOptions) {
		if n > 0 {
			o.sampleCount = n
		}
	}
}

// WithOrigin selects the row order of the render target storage.
func WithOrigin(origin gpu.Origin) SurfaceOption {
	return func(o *surfaceOptions) {
		o.origin = origin
	}
}

// WithMipmaps allocates a full mip chain that is regenerated after every
// flush.
func WithMipmaps(enabled bool) SurfaceOption {
	return func(o *surfaceOptions) {
		o.mipmapped = enabled
	}
}

// WithFormat selects the pixel format of the render target.
func WithFormat(format gpu.PixelFormat) SurfaceOption {
	return func(o *surfaceOptions) {
		o.format = format
	}
}
