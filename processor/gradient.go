package processor

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
)

// Gradient interpolates color stops along a parameter computed from local
// coordinates: the x coordinate in unit space for a linear gradient, the
// distance from the origin for a radial one. The parameter is clamped to
// [0, 1]. Colors are interpolated unpremultiplied, then premultiplied and
// scaled by the input alpha.
type Gradient struct {
	node
	class     ClassID
	colors    []gpu.Color
	positions []float32
}

// NewLinearGradient returns a gradient running from start to end in the
// shader's space. localMatrix maps shader space to local coordinates.
// colors are unpremultiplied; positions may be nil for even spacing.
func NewLinearGradient(start, end geom.Point, colors []gpu.Color, positions []float32,
	localMatrix geom.Matrix) Fragment {
	vec := end.Sub(start)
	mag := vec.Length()
	inv := 0.0
	if mag != 0 {
		inv = 1 / mag
	}
	// Rotate the gradient direction onto +x, then scale to unit length.
	cos, sin := vec.X*inv, vec.Y*inv
	toUnit := geom.Scale(inv, inv).
		Multiply(geom.Matrix{A: cos, B: sin, D: -sin, E: cos}).
		Multiply(geom.Translate(-start.X, -start.Y))
	return newGradient(ClassLinearGradient, colors, positions, toUnit, localMatrix)
}

// NewRadialGradient returns a gradient centered at center reaching its
// last stop at radius.
func NewRadialGradient(center geom.Point, radius float64, colors []gpu.Color, positions []float32,
	localMatrix geom.Matrix) Fragment {
	inv := 0.0
	if radius > 0 {
		inv = 1 / radius
	}
	toUnit := geom.Scale(inv, inv).Multiply(geom.Translate(-center.X, -center.Y))
	return newGradient(ClassRadialGradient, colors, positions, toUnit, localMatrix)
}

func newGradient(class ClassID, colors []gpu.Color, positions []float32, toUnit, localMatrix geom.Matrix) Fragment {
	if len(colors) == 0 {
		return nil
	}
	if len(colors) == 1 {
		colors = []gpu.Color{colors[0], colors[0]}
		positions = nil
	}
	if positions != nil && len(positions) != len(colors) {
		return nil
	}
	inverse, ok := localMatrix.Invert()
	if !ok {
		return nil
	}
	c, p := normalizeStops(colors, positions)
	return &Gradient{
		node: node{
			transforms: []CoordTransform{{Matrix: toUnit.Multiply(inverse)}},
		},
		class:     class,
		colors:    c,
		positions: p,
	}
}

// normalizeStops pads the stops so the first sits at 0 and the last at 1
// and forces the positions to be monotonic.
func normalizeStops(colors []gpu.Color, positions []float32) ([]gpu.Color, []float32) {
	if positions == nil {
		out := make([]float32, len(colors))
		scale := 1 / float32(len(colors)-1)
		for i := range out {
			out[i] = float32(i) * scale
		}
		out[len(out)-1] = 1
		return append([]gpu.Color(nil), colors...), out
	}
	dummyFirst := positions[0] != 0
	dummyLast := positions[len(positions)-1] != 1

	c := make([]gpu.Color, 0, len(colors)+2)
	if dummyFirst {
		c = append(c, colors[0])
	}
	c = append(c, colors...)
	if dummyLast {
		c = append(c, colors[len(colors)-1])
	}

	p := make([]float32, 0, len(c))
	var prev float32
	p = append(p, prev)
	start := 1
	if dummyFirst {
		start = 0
	}
	end := len(colors)
	if dummyLast {
		end++
	}
	for i := start; i < end; i++ {
		var cur float32 = 1
		if i != len(colors) {
			cur = max(min(positions[i], 1), prev)
		}
		p = append(p, cur)
		prev = cur
	}
	return c, p
}

func (g *Gradient) ClassID() ClassID { return g.class }

// Colors returns the normalized unpremultiplied stop colors.
func (g *Gradient) Colors() []gpu.Color { return g.colors }

// Positions returns the normalized stop positions.
func (g *Gradient) Positions() []float32 { return g.positions }

// Param returns the gradient parameter at a point in gradient space,
// clamped to [0, 1].
func (g *Gradient) Param(p geom.Point) float32 {
	var t float64
	if g.class == ClassRadialGradient {
		t = math.Hypot(p.X, p.Y)
	} else {
		t = p.X
	}
	return float32(clamp01(t))
}

// ColorAt returns the premultiplied color at parameter t.
func (g *Gradient) ColorAt(t float32) gpu.Color {
	pos := g.positions
	if t <= pos[0] {
		return g.colors[0].Premultiply()
	}
	for i := 1; i < len(pos); i++ {
		if t <= pos[i] {
			span := pos[i] - pos[i-1]
			if span <= 0 {
				return g.colors[i].Premultiply()
			}
			f := (t - pos[i-1]) / span
			a, b := g.colors[i-1], g.colors[i]
			return gpu.Color{
				R: a.R + (b.R-a.R)*f,
				G: a.G + (b.G-a.G)*f,
				B: a.B + (b.B-a.B)*f,
				A: a.A + (b.A-a.A)*f,
			}.Premultiply()
		}
	}
	return g.colors[len(g.colors)-1].Premultiply()
}

// IsOpaque reports whether every stop is opaque.
func (g *Gradient) IsOpaque() bool {
	for _, c := range g.colors {
		if !c.IsOpaque() {
			return false
		}
	}
	return true
}

func (g *Gradient) writeKey(kb *KeyBuilder) {
	kb.Write16(uint16(len(g.positions)))
}

func (g *Gradient) equalData(o Fragment) bool {
	that := o.(*Gradient)
	if len(g.colors) != len(that.colors) {
		return false
	}
	for i := range g.colors {
		if g.colors[i] != that.colors[i] || g.positions[i] != that.positions[i] {
			return false
		}
	}
	return true
}
