package gpucanvas

import (
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/internal/stroke"
)

// Style selects whether geometry is filled or stroked.
type Style uint8

const (
	// StyleFill fills the interior of the geometry.
	StyleFill Style = iota
	// StyleStroke outlines the geometry with the paint's stroke settings.
	StyleStroke
)

// LineCap specifies the shape of open stroke endpoints.
type LineCap = stroke.Cap

const (
	// LineCapButt ends the stroke exactly at the endpoint.
	LineCapButt = stroke.CapButt
	// LineCapRound adds a semicircle at the endpoint.
	LineCapRound = stroke.CapRound
	// LineCapSquare extends the stroke half its width beyond the endpoint.
	LineCapSquare = stroke.CapSquare
)

// LineJoin specifies the shape of stroke corners.
type LineJoin = stroke.Join

const (
	// LineJoinMiter produces a sharp corner, limited by MiterLimit.
	LineJoinMiter = stroke.JoinMiter
	// LineJoinRound produces a circular arc.
	LineJoinRound = stroke.JoinRound
	// LineJoinBevel cuts the corner with a straight line.
	LineJoinBevel = stroke.JoinBevel
)

// Paint describes how geometry is colored.
//
// The color stages run in order: the shader (or the solid Color), an
// alpha modulation when the combined alpha is below one, then the color
// filter. The mask filter contributes coverage.
type Paint struct {
	// Color is the solid color, not premultiplied. With a Shader only its
	// alpha is used.
	Color gpu.Color

	// Shader, when set, computes the color per pixel.
	Shader Shader

	// ColorFilter transforms the shaded color.
	ColorFilter ColorFilter

	// MaskFilter scales coverage.
	MaskFilter MaskFilter

	// Style selects filling or stroking.
	Style Style

	// StrokeWidth is the stroke width in local units.
	StrokeWidth float64

	// LineCap is the endpoint shape for strokes.
	LineCap LineCap

	// LineJoin is the corner shape for strokes.
	LineJoin LineJoin

	// MiterLimit bounds miter joins.
	MiterLimit float64

	// Antialias enables edge antialiasing.
	Antialias bool
}

// NewPaint returns a fill paint of color c with antialiasing on.
func NewPaint(c gpu.Color) *Paint {
	return &Paint{
		Color:       c,
		StrokeWidth: 1,
		LineCap:     LineCapButt,
		LineJoin:    LineJoinMiter,
		MiterLimit:  4,
		Antialias:   true,
	}
}

// Clone returns a shallow copy. Shaders and filters are immutable and
// shared.
func (p *Paint) Clone() *Paint {
	c := *p
	return &c
}

func (p *Paint) strokeStyle() stroke.Style {
	return stroke.Style{
		Width:      p.StrokeWidth,
		Cap:        p.LineCap,
		Join:       p.LineJoin,
		MiterLimit: p.MiterLimit,
	}
}

// isSolid reports whether the paint is a plain color.
func (p *Paint) isSolid() bool {
	return p.Shader == nil && p.ColorFilter == nil && p.MaskFilter == nil
}

var defaultPaint = NewPaint(gpu.Black)

func paintOrDefault(p *Paint) *Paint {
	if p == nil {
		return defaultPaint
	}
	return p
}
