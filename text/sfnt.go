package text

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/path"
)

// SFNTTypeface is a TrueType or OpenType typeface with vector outlines.
//
// SFNTTypeface is safe for concurrent use.
type SFNTTypeface struct {
	id   uint64
	data []byte
	font *sfnt.Font

	mu  sync.Mutex
	buf sfnt.Buffer

	shapeOnce sync.Once
	shapeFont *gotext.Font
	shapeErr  error
}

// ParseSFNT parses TrueType or OpenType font data. The data must not be
// modified afterwards.
func ParseSFNT(data []byte) (*SFNTTypeface, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	return &SFNTTypeface{id: nextTypefaceID(), data: data, font: f}, nil
}

func (t *SFNTTypeface) ID() uint64 { return t.id }

// Name returns the family name, or "" when the font has none.
func (t *SFNTTypeface) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	name, err := t.font.Name(&t.buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// NumGlyphs returns the number of glyphs in the font.
func (t *SFNTTypeface) NumGlyphs() int {
	return t.font.NumGlyphs()
}

func (t *SFNTTypeface) GlyphIndex(r rune) (GlyphID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, err := t.font.GlyphIndex(&t.buf, r)
	if err != nil || idx == 0 {
		return 0, false
	}
	return GlyphID(idx), true
}

func (t *SFNTTypeface) GlyphPath(id GlyphID, size float64) (*path.Path, error) {
	if int(id) >= t.font.NumGlyphs() {
		return nil, ErrGlyphNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	// segments alias t.buf until the lock is released.
	segments, err := t.font.LoadGlyph(&t.buf, sfnt.GlyphIndex(id), toFixed(size), nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrColoredGlyph) {
			return nil, ErrNoOutline
		}
		return nil, fmt.Errorf("text: load glyph %d: %w", id, err)
	}

	p := path.New()
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			p.Close()
			a := fromFixed(seg.Args[0])
			p.MoveTo(a.X, a.Y)
		case sfnt.SegmentOpLineTo:
			a := fromFixed(seg.Args[0])
			p.LineTo(a.X, a.Y)
		case sfnt.SegmentOpQuadTo:
			c, a := fromFixed(seg.Args[0]), fromFixed(seg.Args[1])
			p.QuadTo(c.X, c.Y, a.X, a.Y)
		case sfnt.SegmentOpCubeTo:
			c1, c2, a := fromFixed(seg.Args[0]), fromFixed(seg.Args[1]), fromFixed(seg.Args[2])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, a.X, a.Y)
		}
	}
	p.Close()
	return p, nil
}

func (t *SFNTTypeface) GlyphAdvance(id GlyphID, size float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	adv, err := t.font.GlyphAdvance(&t.buf, sfnt.GlyphIndex(id), toFixed(size), font.HintingNone)
	if err != nil {
		return 0
	}
	return float64(adv) / 64
}

// HasColor is false: sfnt outlines are filled with the paint.
func (t *SFNTTypeface) HasColor() bool { return false }

// GlyphImage rasterizes the outline of id into an alpha image.
func (t *SFNTTypeface) GlyphImage(id GlyphID, size float64) (image.Image, geom.Point, error) {
	p, err := t.GlyphPath(id, size)
	if err != nil {
		return nil, geom.Point{}, err
	}
	return rasterizeOutline(p)
}

// Metrics returns ascent, descent and line height at size.
func (t *SFNTTypeface) Metrics(size float64) Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, err := t.font.Metrics(&t.buf, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:     float64(m.Ascent) / 64,
		Descent:    float64(m.Descent) / 64,
		LineHeight: float64(m.Height) / 64,
	}
}

// shapingFont parses the data once more for the HarfBuzz shaper.
func (t *SFNTTypeface) shapingFont() (*gotext.Font, error) {
	t.shapeOnce.Do(func() {
		face, err := gotext.ParseTTF(bytes.NewReader(t.data))
		if err != nil {
			t.shapeErr = fmt.Errorf("text: shaping font: %w", err)
			return
		}
		t.shapeFont = face.Font
	})
	return t.shapeFont, t.shapeErr
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fromFixed(p fixed.Point26_6) geom.Point {
	return geom.Pt(float64(p.X)/64, float64(p.Y)/64)
}
