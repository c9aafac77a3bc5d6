package text

import (
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/path"
)

// BitmapGlyph is one prerendered glyph of a BitmapTypeface, stored at the
// typeface's design size.
type BitmapGlyph struct {
	Image image.Image
	// Offset places the image's top-left corner relative to the glyph
	// origin.
	Offset  geom.Point
	Advance float64
}

// BitmapTypeface serves color glyph images, such as emoji strikes.
// Images are scaled from the design size to the requested size.
//
// BitmapTypeface is safe for concurrent use.
type BitmapTypeface struct {
	id         uint64
	designSize float64

	mu     sync.RWMutex
	runes  map[rune]GlyphID
	glyphs []BitmapGlyph
}

// NewBitmapTypeface returns an empty typeface whose glyph images are
// drawn at designSize pixels per em.
func NewBitmapTypeface(designSize float64) *BitmapTypeface {
	if designSize <= 0 {
		designSize = 1
	}
	// Glyph 0 is the missing glyph.
	return &BitmapTypeface{
		id:         nextTypefaceID(),
		designSize: designSize,
		runes:      make(map[rune]GlyphID),
		glyphs:     []BitmapGlyph{{}},
	}
}

// Add registers a glyph for r and returns its id.
func (t *BitmapTypeface) Add(r rune, g BitmapGlyph) GlyphID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := GlyphID(len(t.glyphs))
	t.glyphs = append(t.glyphs, g)
	t.runes[r] = id
	return id
}

func (t *BitmapTypeface) ID() uint64 { return t.id }

func (t *BitmapTypeface) GlyphIndex(r rune) (GlyphID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.runes[r]
	return id, ok
}

func (t *BitmapTypeface) glyph(id GlyphID) (BitmapGlyph, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == 0 || int(id) >= len(t.glyphs) {
		return BitmapGlyph{}, false
	}
	return t.glyphs[id], true
}

// GlyphPath always fails: bitmap glyphs have no outline.
func (t *BitmapTypeface) GlyphPath(GlyphID, float64) (*path.Path, error) {
	return nil, ErrNoOutline
}

func (t *BitmapTypeface) GlyphAdvance(id GlyphID, size float64) float64 {
	g, ok := t.glyph(id)
	if !ok {
		return 0
	}
	return g.Advance * size / t.designSize
}

func (t *BitmapTypeface) HasColor() bool { return true }

// GlyphImage returns the glyph image resampled to size.
func (t *BitmapTypeface) GlyphImage(id GlyphID, size float64) (image.Image, geom.Point, error) {
	g, ok := t.glyph(id)
	if !ok || g.Image == nil {
		return nil, geom.Point{}, ErrGlyphNotFound
	}
	scale := size / t.designSize
	offset := geom.Pt(g.Offset.X*scale, g.Offset.Y*scale)
	if math.Abs(scale-1) < 1e-6 {
		return g.Image, offset, nil
	}
	b := g.Image.Bounds()
	w := max(int(math.Round(float64(b.Dx())*scale)), 1)
	h := max(int(math.Round(float64(b.Dy())*scale)), 1)
	return imaging.Resize(g.Image, w, h, imaging.Linear), offset, nil
}
