package wgpu

import (
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
)

// Uniform slot 0 holds the viewport transform. When the pipeline reads a
// destination copy, slot 1 holds its offset and reciprocal size.
const (
	slotViewport = 0
	slotDst      = 1
)

// layout assigns uniform slots (vec4 each) and texture units to the
// fragments of a pipeline. Pipelines with equal keys get equal layouts.
type layout struct {
	slots    map[processor.Fragment]int
	units    map[processor.Fragment]int
	numSlots int
	// numUnits counts the destination copy.
	numUnits int
	dstUnit  int
}

func newLayout(p *pipeline.Pipeline) *layout {
	l := &layout{
		slots:    make(map[processor.Fragment]int),
		units:    make(map[processor.Fragment]int),
		numSlots: 1,
		dstUnit:  -1,
	}
	if p.DstTexture() != nil {
		l.numSlots++
	}
	it := processor.NewIter(p.Fragments()...)
	for fp := it.Next(); fp != nil; fp = it.Next() {
		if n := slotCount(fp); n > 0 {
			l.slots[fp] = l.numSlots
			l.numSlots += n
		}
		if len(fp.Samplers()) > 0 {
			l.units[fp] = l.numUnits
			l.numUnits += len(fp.Samplers())
		}
	}
	if p.DstTexture() != nil {
		l.dstUnit = l.numUnits
		l.numUnits++
	}
	return l
}

// slotCount returns the number of vec4 uniforms fp reads.
func slotCount(fp processor.Fragment) int {
	switch fp := fp.(type) {
	case *processor.ConstColor, *processor.AARectEffect:
		return 1
	case *processor.TextureEffect:
		if fp.RGBAAA() {
			return 3
		}
		return 2
	case *processor.DeviceSpaceTextureEffect:
		return 2
	case *processor.ColorMatrix:
		return 5
	case *processor.Gradient:
		return 2 + 2*len(fp.Positions())
	}
	return 0
}

// textureBinding and samplerBinding return the bind group slots of a
// texture unit. Binding 0 is the uniform buffer.
func textureBinding(unit int) int { return 1 + 2*unit }
func samplerBinding(unit int) int { return 2 + 2*unit }
