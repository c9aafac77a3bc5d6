package geom

import "math"

// RRect is a rectangle with elliptical corners of equal radii.
type RRect struct {
	Rect    Rect
	RadiusX float64
	RadiusY float64
}

// NewRRect builds a rounded rectangle, clamping the radii to half the
// rectangle's extent.
func NewRRect(r Rect, rx, ry float64) RRect {
	rx = math.Max(0, math.Min(rx, r.Width()/2))
	ry = math.Max(0, math.Min(ry, r.Height()/2))
	return RRect{Rect: r, RadiusX: rx, RadiusY: ry}
}

// IsRect reports whether the corners are square.
func (rr RRect) IsRect() bool {
	return rr.RadiusX <= 0 || rr.RadiusY <= 0
}

// IsOval reports whether the radii span the whole rectangle.
func (rr RRect) IsOval() bool {
	return rr.RadiusX*2 >= rr.Rect.Width() && rr.RadiusY*2 >= rr.Rect.Height()
}

// Scale returns the rounded rectangle scaled about the origin.
func (rr RRect) Scale(sx, sy float64) RRect {
	r := Rect{Left: rr.Rect.Left * sx, Top: rr.Rect.Top * sy, Right: rr.Rect.Right * sx, Bottom: rr.Rect.Bottom * sy}
	if sx < 0 {
		r.Left, r.Right = r.Right, r.Left
	}
	if sy < 0 {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return RRect{Rect: r, RadiusX: rr.RadiusX * math.Abs(sx), RadiusY: rr.RadiusY * math.Abs(sy)}
}
