package path

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Rasterize renders the anti-aliased coverage of the path into an alpha
// mask the size of bounds. Path coordinates are in the same space as
// bounds; bounds.Min lands on mask pixel (0, 0).
func (p *Path) Rasterize(bounds image.Rectangle) *image.Alpha {
	w, h := bounds.Dx(), bounds.Dy()
	mask := image.NewAlpha(image.Rect(0, 0, max(w, 0), max(h, 0)))
	if w <= 0 || h <= 0 || p.IsEmpty() {
		return mask
	}

	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src

	open := false
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(float32(e.Point.X)-ox, float32(e.Point.Y)-oy)
			open = true
		case LineTo:
			z.LineTo(float32(e.Point.X)-ox, float32(e.Point.Y)-oy)
		case QuadTo:
			z.QuadTo(
				float32(e.Control.X)-ox, float32(e.Control.Y)-oy,
				float32(e.Point.X)-ox, float32(e.Point.Y)-oy)
		case CubicTo:
			z.CubeTo(
				float32(e.Control1.X)-ox, float32(e.Control1.Y)-oy,
				float32(e.Control2.X)-ox, float32(e.Control2.Y)-oy,
				float32(e.Point.X)-ox, float32(e.Point.Y)-oy)
		case Close:
			if open {
				z.ClosePath()
				open = false
			}
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}
