package geom

import (
	"image"
	"math"
)

// PixelAlignTolerance is how far an edge may sit from an integer pixel
// boundary and still count as aligned.
const PixelAlignTolerance = 1e-3

// Rect is an axis-aligned rectangle stored as left, top, right, bottom.
// A rectangle with Right <= Left or Bottom <= Top is empty.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// XYWH creates a Rect from an origin and a size.
func XYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// WH creates a Rect at the origin.
func WH(w, h float64) Rect {
	return Rect{Right: w, Bottom: h}
}

// BoundsOf returns the smallest rectangle containing all points.
func BoundsOf(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Left: pts[0].X, Top: pts[0].Y, Right: pts[0].X, Bottom: pts[0].Y}
	for _, p := range pts[1:] {
		r.Left = math.Min(r.Left, p.X)
		r.Top = math.Min(r.Top, p.Y)
		r.Right = math.Max(r.Right, p.X)
		r.Bottom = math.Max(r.Bottom, p.Y)
	}
	return r
}

// FromImageRect converts an integer rectangle.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{Left: float64(r.Min.X), Top: float64(r.Min.Y), Right: float64(r.Max.X), Bottom: float64(r.Max.Y)}
}

func (r Rect) X() float64      { return r.Left }
func (r Rect) Y() float64      { return r.Top }
func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Pt((r.Left+r.Right)/2, (r.Top+r.Bottom)/2)
}

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool {
	return !(r.Left < r.Right && r.Top < r.Bottom)
}

// Intersect returns the overlap of r and o, and false when they are disjoint.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		Left:   math.Max(r.Left, o.Left),
		Top:    math.Max(r.Top, o.Top),
		Right:  math.Min(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
	}
	if out.IsEmpty() {
		return Rect{}, false
	}
	return out, true
}

// Union returns the smallest rectangle containing both. Empty inputs are
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Contains reports whether o lies entirely inside r. An empty o is never
// contained.
func (r Rect) Contains(o Rect) bool {
	return !r.IsEmpty() && !o.IsEmpty() &&
		r.Left <= o.Left && r.Top <= o.Top && r.Right >= o.Right && r.Bottom >= o.Bottom
}

// ContainsPoint reports whether p is inside r (right and bottom exclusive).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Offset translates the rectangle.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Outset grows the rectangle by dx horizontally and dy vertically on each side.
func (r Rect) Outset(dx, dy float64) Rect {
	return Rect{Left: r.Left - dx, Top: r.Top - dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Round rounds every edge to the nearest integer.
func (r Rect) Round() Rect {
	return Rect{Left: math.Round(r.Left), Top: math.Round(r.Top), Right: math.Round(r.Right), Bottom: math.Round(r.Bottom)}
}

// RoundOut returns the smallest integer rectangle containing r.
func (r Rect) RoundOut() Rect {
	return Rect{Left: math.Floor(r.Left), Top: math.Floor(r.Top), Right: math.Ceil(r.Right), Bottom: math.Ceil(r.Bottom)}
}

// IsPixelAligned reports whether every edge lies within
// PixelAlignTolerance of an integer.
func (r Rect) IsPixelAligned() bool {
	aligned := func(v float64) bool { return math.Abs(math.Round(v)-v) <= PixelAlignTolerance }
	return aligned(r.Left) && aligned(r.Top) && aligned(r.Right) && aligned(r.Bottom)
}

// ImageRect converts r to integer pixel bounds, rounding each edge.
func (r Rect) ImageRect() image.Rectangle {
	rr := r.Round()
	return image.Rect(int(rr.Left), int(rr.Top), int(rr.Right), int(rr.Bottom))
}

// FlipY mirrors the rectangle vertically inside a target of the given
// height, converting between top-left and bottom-left origins.
func (r Rect) FlipY(height float64) Rect {
	h := r.Height()
	top := height - r.Bottom
	return Rect{Left: r.Left, Top: top, Right: r.Right, Bottom: top + h}
}
