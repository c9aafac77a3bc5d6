package text

import (
	"image"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/internal/stroke"
	"github.com/gogpu/gpucanvas/path"
)

const (
	// FauxItalicSkew is the horizontal skew applied to synthesize italics.
	FauxItalicSkew = -0.25

	// fauxBoldScale is the outline stroke width relative to the font size.
	fauxBoldScale = 1.0 / 24
)

// Font is a typeface at a pixel size with optional synthetic styles.
type Font struct {
	Typeface Typeface
	Size     float64

	// FauxBold thickens outlines by stroking them.
	FauxBold bool
	// FauxItalic slants outlines to the right.
	FauxItalic bool
}

// NewFont returns a regular font of tf at size pixels per em.
func NewFont(tf Typeface, size float64) Font {
	return Font{Typeface: tf, Size: size}
}

// WithSize returns a copy of f at another size.
func (f Font) WithSize(size float64) Font {
	f.Size = size
	return f
}

// GlyphPath returns the styled outline of id in pixels, relative to the
// glyph origin.
func (f Font) GlyphPath(id GlyphID) (*path.Path, error) {
	p, err := f.Typeface.GlyphPath(id, f.Size)
	if err != nil {
		return nil, err
	}
	if f.FauxBold && !p.IsEmpty() {
		outline := stroke.Expand(p, stroke.Style{
			Width:      f.Size * fauxBoldScale,
			Cap:        stroke.CapButt,
			Join:       stroke.JoinRound,
			MiterLimit: 4,
		})
		p.AddPath(outline)
	}
	if f.FauxItalic {
		p = p.Transform(geom.Shear(FauxItalicSkew, 0))
	}
	return p, nil
}

// GlyphAdvance returns the horizontal advance of id in pixels.
func (f Font) GlyphAdvance(id GlyphID) float64 {
	adv := f.Typeface.GlyphAdvance(id, f.Size)
	if f.FauxBold {
		adv += f.Size * fauxBoldScale
	}
	return adv
}

// GlyphImage returns the glyph image and the position of its top-left
// corner relative to the glyph origin.
func (f Font) GlyphImage(id GlyphID) (image.Image, geom.Point, error) {
	if f.Typeface.HasColor() || !f.FauxBold && !f.FauxItalic {
		return f.Typeface.GlyphImage(id, f.Size)
	}
	p, err := f.GlyphPath(id)
	if err != nil {
		return nil, geom.Point{}, err
	}
	return rasterizeOutline(p)
}
