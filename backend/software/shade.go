package software

import (
	"math"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// fragment is the per-pixel input of the processor interpreter.
type fragment struct {
	// local is the interpolated local coordinate; dx and dy are its
	// change per device pixel.
	local  geom.Point
	dx, dy geom.Point
	// storage is the pixel center in target storage coordinates.
	storage geom.Point
}

// shader interprets the fragment processors of a bound pipeline.
type shader struct {
	units    map[processor.Fragment]int
	bindings []binding
}

// eval runs fp on the premultiplied input color.
func (s *shader) eval(fp processor.Fragment, in gpu.Color, f *fragment) gpu.Color {
	switch fp := fp.(type) {
	case *processor.ConstColor:
		switch fp.Mode() {
		case processor.InputModulateRGBA:
			return fp.Color().Mul(in)
		case processor.InputModulateA:
			return fp.Color().Scale(in.A)
		}
		return fp.Color()

	case *processor.TextureEffect:
		b := s.bindings[s.units[fp]]
		ct := fp.CoordTransforms()[0]
		m := ct.TotalMatrix()
		uv := m.TransformPoint(f.local)
		lod := textureLOD(b.tex, m, f)
		c := b.tex.sample([2]float64{uv.X, uv.Y}, b.state, lod)
		if fp.RGBAAA() {
			off := ct.NormalizedAlphaStart()
			a := b.tex.sample([2]float64{uv.X + off.X, uv.Y + off.Y}, b.state, lod).R
			c = gpu.Color{R: c.R * a, G: c.G * a, B: c.B * a, A: a}
		}
		return c.Mul(in)

	case *processor.DeviceSpaceTextureEffect:
		b := s.bindings[s.units[fp]]
		uv := fp.DeviceMatrix().TransformPoint(f.storage)
		return b.tex.sample([2]float64{uv.X, uv.Y}, b.state, 0).Mul(in)

	case *processor.AARectEffect:
		return in.Scale(float32(fp.Coverage(f.storage.X, f.storage.Y)))

	case *processor.Xfermode:
		children := fp.Children()
		switch fp.Kind() {
		case processor.SrcChild:
			return blend.Apply(fp.Mode(), s.eval(children[0], gpu.White, f), in)
		case processor.TwoChild:
			src := s.eval(children[0], gpu.White, f)
			dst := s.eval(children[1], gpu.White, f)
			return blend.Apply(fp.Mode(), src, dst).Scale(in.A)
		}
		return blend.Apply(fp.Mode(), in, s.eval(children[0], gpu.White, f))

	case *processor.Series:
		for _, child := range fp.Children() {
			in = s.eval(child, in, f)
		}
		return in

	case *processor.Modulate:
		return s.eval(fp.Children()[0], gpu.White, f).Mul(in)

	case *processor.ColorMatrix:
		return fp.Apply(in)

	case *processor.Gradient:
		p := fp.CoordTransforms()[0].TotalMatrix().TransformPoint(f.local)
		return fp.ColorAt(fp.Param(p)).Scale(in.A)
	}
	return in
}

// textureLOD returns the mip level of detail for sampling tex through
// the normalized matrix m.
func textureLOD(tex *texture, m geom.Matrix, f *fragment) float64 {
	if !tex.mipmapped {
		return 0
	}
	w, h := float64(tex.width), float64(tex.height)
	du := m.TransformVector(f.dx)
	dv := m.TransformVector(f.dy)
	rho := max(math.Hypot(du.X*w, du.Y*h), math.Hypot(dv.X*w, dv.Y*h))
	if rho <= 0 {
		return 0
	}
	return math.Log2(rho)
}
