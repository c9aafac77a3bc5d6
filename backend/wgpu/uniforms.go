package wgpu

import (
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
)

// packUniforms writes the uniform block of p for a target of the given
// size and origin, in the slot order of l.
func packUniforms(p *pipeline.Pipeline, l *layout, width, height int, origin gpu.Origin) []float32 {
	data := make([]float32, 4*l.numSlots)
	put := func(slot int, x, y, z, w float32) {
		copy(data[4*slot:], []float32{x, y, z, w})
	}
	putColor := func(slot int, c gpu.Color) {
		put(slot, c.R, c.G, c.B, c.A)
	}
	putMatrix := func(slot int, m geom.Matrix) {
		put(slot, float32(m.A), float32(m.B), float32(m.C), 0)
		put(slot+1, float32(m.D), float32(m.E), float32(m.F), 0)
	}

	// Logical y grows down. Storage row 0 is the top of a top-left target
	// and the bottom of a bottom-left one.
	sy, oy := float32(-2/float64(height)), float32(1)
	if origin == gpu.OriginBottomLeft {
		sy, oy = -sy, -1
	}
	put(slotViewport, float32(2/float64(width)), sy, oy, 0)

	if dst := p.DstTexture(); dst != nil {
		put(slotDst, float32(dst.Offset.X), float32(dst.Offset.Y),
			1/float32(dst.Texture.Width()), 1/float32(dst.Texture.Height()))
	}

	it := processor.NewIter(p.Fragments()...)
	for fp := it.Next(); fp != nil; fp = it.Next() {
		slot, ok := l.slots[fp]
		if !ok {
			continue
		}
		switch fp := fp.(type) {
		case *processor.ConstColor:
			putColor(slot, fp.Color())
		case *processor.TextureEffect:
			ct := fp.CoordTransforms()[0]
			putMatrix(slot, ct.TotalMatrix())
			if fp.RGBAAA() {
				off := ct.NormalizedAlphaStart()
				put(slot+2, float32(off.X), float32(off.Y), 0, 0)
			}
		case *processor.DeviceSpaceTextureEffect:
			putMatrix(slot, fp.DeviceMatrix())
		case *processor.AARectEffect:
			r := fp.Rect().Outset(0.5, 0.5)
			put(slot, float32(r.Left), float32(r.Top), float32(r.Right), float32(r.Bottom))
		case *processor.ColorMatrix:
			m := fp.Matrix()
			for row := 0; row < 4; row++ {
				put(slot+row, m[row*5], m[row*5+1], m[row*5+2], m[row*5+3])
			}
			put(slot+4, m[4], m[9], m[14], m[19])
		case *processor.Gradient:
			putMatrix(slot, fp.CoordTransforms()[0].TotalMatrix())
			n := len(fp.Positions())
			for i, c := range fp.Colors() {
				putColor(slot+2+i, c)
			}
			for i, pos := range fp.Positions() {
				put(slot+2+n+i, pos, 0, 0, 0)
			}
		}
	}
	return data
}
