// Package pipeline describes everything one draw needs from the GPU: the
// vertex stage, the fragment processors, the blend and the output swizzle.
package pipeline

import (
	"image"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// DstTexture is a copy of the destination region a custom blend reads.
// Offset is the target storage position of the copy's first texel.
type DstTexture struct {
	Texture gpu.Texture
	Offset  image.Point
}

// Pipeline is immutable once built.
type Pipeline struct {
	geometry  processor.Geometry
	fragments []processor.Fragment
	numColor  int
	blend     blend.Description
	dst       *DstTexture
	swizzle   gpu.Swizzle
}

// New builds a pipeline. colors run first, each receiving the previous
// output; masks then compute coverage starting from the geometry coverage.
func New(gp processor.Geometry, colors, masks []processor.Fragment, desc blend.Description,
	dst *DstTexture, swizzle gpu.Swizzle) *Pipeline {
	fragments := make([]processor.Fragment, 0, len(colors)+len(masks))
	for _, fp := range colors {
		if fp != nil {
			fragments = append(fragments, fp)
		}
	}
	numColor := len(fragments)
	for _, fp := range masks {
		if fp != nil {
			fragments = append(fragments, fp)
		}
	}
	if desc == nil {
		desc = blend.Resolve(blend.SrcOver)
	}
	return &Pipeline{
		geometry:  gp,
		fragments: fragments,
		numColor:  numColor,
		blend:     desc,
		dst:       dst,
		swizzle:   swizzle,
	}
}

// Geometry returns the vertex stage.
func (p *Pipeline) Geometry() processor.Geometry { return p.geometry }

// Fragments returns color then coverage processors.
func (p *Pipeline) Fragments() []processor.Fragment { return p.fragments }

// Colors returns the color processors.
func (p *Pipeline) Colors() []processor.Fragment { return p.fragments[:p.numColor] }

// Masks returns the coverage processors.
func (p *Pipeline) Masks() []processor.Fragment { return p.fragments[p.numColor:] }

// NumColor returns how many fragments are color processors.
func (p *Pipeline) NumColor() int { return p.numColor }

// Blend returns the blend description.
func (p *Pipeline) Blend() blend.Description { return p.blend }

// DstTexture returns the destination copy, or nil.
func (p *Pipeline) DstTexture() *DstTexture { return p.dst }

// OutputSwizzle returns the swizzle applied to the final color.
func (p *Pipeline) OutputSwizzle() gpu.Swizzle { return p.swizzle }

// Samplers returns every texture binding in unit order: fragment samplers
// in pre-order, then the destination copy.
func (p *Pipeline) Samplers() []processor.Sampler {
	s := processor.Samplers(p.fragments...)
	if p.dst != nil {
		s = append(s, processor.Sampler{Texture: p.dst.Texture})
	}
	return s
}

// ComputeKey writes the program key: geometry key, destination copy key,
// every fragment key, the blend key and the output swizzle key.
func (p *Pipeline) ComputeKey(kb *processor.KeyBuilder) {
	processor.ComputeGeometryKey(p.geometry, kb)
	if p.dst != nil {
		kb.Write8(1)
		kb.Write8(uint8(p.dst.Texture.Format()))
		kb.Write8(uint8(p.dst.Texture.Origin()))
	} else {
		kb.Write8(0)
	}
	kb.Write32(uint32(p.numColor))
	kb.Write32(uint32(len(p.fragments) - p.numColor))
	for _, fp := range p.fragments {
		processor.ComputeKey(fp, kb)
	}
	kb.Write32(p.blend.Key())
	kb.Write16(p.swizzle.Key())
}

// Key returns the program key as a string.
func (p *Pipeline) Key() string {
	var kb processor.KeyBuilder
	p.ComputeKey(&kb)
	return kb.String()
}
