package gpu

import (
	"image/color"
	"math"
)

// Color is an RGBA color with float32 components in [0, 1]. Whether the
// color channels are premultiplied depends on where the value is used;
// paints carry straight alpha, processors and blending use premultiplied
// values.
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Red         = Color{R: 1, A: 1}
	Green       = Color{G: 1, A: 1}
	Blue        = Color{B: 1, A: 1}
)

// RGBA creates a straight-alpha color from float64 components.
func RGBA(r, g, b, a float64) Color {
	return Color{R: float32(r), G: float32(g), B: float32(b), A: float32(a)}
}

// FromColor converts any color.Color to a straight-alpha Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// Premultiply multiplies the color channels by alpha.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Unpremultiply divides the color channels by alpha.
func (c Color) Unpremultiply() Color {
	if c.A == 0 {
		return Color{}
	}
	return Color{R: c.R / c.A, G: c.G / c.A, B: c.B / c.A, A: c.A}
}

// MulAlpha scales the alpha channel of a straight-alpha color.
func (c Color) MulAlpha(a float32) Color {
	c.A *= a
	return c
}

// Scale multiplies every channel by s, as for a premultiplied color.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}

// Mul multiplies channels component-wise.
func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Add adds channels component-wise.
func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

// Clamp restricts every channel to [0, 1].
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// IsOpaque reports whether alpha is 1.
func (c Color) IsOpaque() bool {
	return c.A >= 1
}

// RGBA8 converts a premultiplied color to 8-bit premultiplied components
// with rounding.
func (c Color) RGBA8() color.RGBA {
	c = c.Clamp()
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// FromRGBA8 converts 8-bit premultiplied components to a Color.
func FromRGBA8(p color.RGBA) Color {
	return Color{R: float32(p.R) / 255, G: float32(p.G) / 255, B: float32(p.B) / 255, A: float32(p.A) / 255}
}

func to8(v float32) uint8 {
	return uint8(math.Round(float64(v) * 255))
}

func clamp01(v float32) float32 {
	switch {
	case v < 0 || math.IsNaN(float64(v)):
		return 0
	case v > 1:
		return 1
	}
	return v
}
