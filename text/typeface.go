package text

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/path"
)

// GlyphID is a glyph index within a typeface.
type GlyphID uint16

// Typeface provides glyph data at arbitrary pixel sizes. Outlines and
// images are placed relative to the glyph origin on the baseline, with y
// pointing down.
type Typeface interface {
	// ID is unique among typefaces of the process.
	ID() uint64

	// GlyphIndex maps a rune to a glyph. ok is false when the typeface
	// has no glyph for r.
	GlyphIndex(r rune) (id GlyphID, ok bool)

	// GlyphPath returns the outline of id at size pixels per em. Glyphs
	// without ink return an empty path. Image-only glyphs fail with
	// ErrNoOutline.
	GlyphPath(id GlyphID, size float64) (*path.Path, error)

	// GlyphAdvance returns the horizontal advance of id in pixels.
	GlyphAdvance(id GlyphID, size float64) float64

	// HasColor reports whether glyphs are color images that must be
	// drawn as images rather than filled outlines.
	HasColor() bool

	// GlyphImage renders id at size and returns the image together with
	// the position of its top-left corner relative to the glyph origin.
	GlyphImage(id GlyphID, size float64) (image.Image, geom.Point, error)
}

var typefaceIDs atomic.Uint64

func nextTypefaceID() uint64 {
	return typefaceIDs.Add(1)
}

// rasterizeOutline renders an outline to an alpha image covering its
// integer bounds.
func rasterizeOutline(p *path.Path) (image.Image, geom.Point, error) {
	b := p.Bounds().RoundOut()
	if b.IsEmpty() {
		return nil, geom.Point{}, ErrNoImage
	}
	return p.Rasterize(b.ImageRect()), geom.Pt(b.Left, b.Top), nil
}
