package processor

import "github.com/gogpu/gpucanvas/geom"

// AARectEffect multiplies the input by the analytic coverage of a
// rectangle in target storage coordinates.
type AARectEffect struct {
	node
	rect geom.Rect
}

// NewAARectEffect returns a coverage processor for rect.
func NewAARectEffect(rect geom.Rect) *AARectEffect {
	return &AARectEffect{rect: rect}
}

func (*AARectEffect) ClassID() ClassID { return ClassAARectEffect }

// Rect returns the covered rectangle.
func (a *AARectEffect) Rect() geom.Rect { return a.rect }

// Coverage returns the coverage of the pixel centered at (fx, fy).
// The rectangle is outset by half a pixel so a pixel straddling an edge
// gets partial coverage.
func (a *AARectEffect) Coverage(fx, fy float64) float64 {
	r := a.rect.Outset(0.5, 0.5)
	d0 := clamp01(fx - r.Left)
	d1 := clamp01(fy - r.Top)
	d2 := clamp01(r.Right - fx)
	d3 := clamp01(r.Bottom - fy)
	return (d0 + d2 - 1) * (d1 + d3 - 1)
}

func (a *AARectEffect) writeKey(*KeyBuilder) {}

func (a *AARectEffect) equalData(o Fragment) bool {
	return a.rect == o.(*AARectEffect).rect
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
