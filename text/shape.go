package text

import (
	"slices"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/gpucanvas/geom"
)

// Run is a line of shaped glyphs in visual order.
type Run struct {
	Glyphs []GlyphID
	// Positions are glyph origins relative to the start of the line, on
	// the baseline.
	Positions []geom.Point
	// Advance is the total horizontal advance.
	Advance float64
	// RTL reports a right-to-left paragraph.
	RTL bool
}

// Len returns the number of glyphs.
func (r Run) Len() int { return len(r.Glyphs) }

// shapeable is implemented by typefaces backed by font data.
type shapeable interface {
	shapingFont() (*gotext.Font, error)
}

// HarfbuzzShaper is not safe for concurrent use; reuse instances across
// sequential calls.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Shape converts s into positioned glyphs. The paragraph is split into
// directional runs first; runs are shaped with HarfBuzz when the typeface
// carries font data and mapped rune by rune otherwise.
func Shape(s string, f Font) (Run, error) {
	runes := []rune(s)
	if len(runes) == 0 || f.Typeface == nil {
		return Run{}, nil
	}
	rtl := paragraphRTL(runes)
	runs := directionalRuns(s, len(runes), rtl)
	if rtl {
		slices.Reverse(runs)
	}

	var out Run
	out.RTL = rtl
	var face *gotext.Face
	if sf, ok := f.Typeface.(shapeable); ok {
		gf, err := sf.shapingFont()
		if err != nil {
			return Run{}, err
		}
		face = gotext.NewFace(gf)
	}
	for _, r := range runs {
		if face != nil {
			shapeHarfbuzz(&out, f, face, runes, r)
		} else {
			shapeSimple(&out, f, runes, r)
		}
	}
	return out, nil
}

type dirRun struct {
	start, end int // rune indices, end exclusive
	rtl        bool
}

// paragraphRTL reports whether the first strong character is
// right-to-left.
func paragraphRTL(runes []rune) bool {
	for _, r := range runes {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

func directionalRuns(s string, n int, rtl bool) []dirRun {
	def := bidi.LeftToRight
	if rtl {
		def = bidi.RightToLeft
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(def)); err != nil {
		return []dirRun{{0, n, rtl}}
	}
	order, err := p.Order()
	if err != nil || order.NumRuns() == 0 {
		return []dirRun{{0, n, rtl}}
	}
	runs := make([]dirRun, 0, order.NumRuns())
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		start, end := run.Pos()
		runs = append(runs, dirRun{start: start, end: min(end+1, n), rtl: run.Direction() == bidi.RightToLeft})
	}
	return runs
}

func shapeHarfbuzz(out *Run, f Font, face *gotext.Face, runes []rune, r dirRun) {
	dir := di.DirectionLTR
	if r.rtl {
		dir = di.DirectionRTL
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  r.start,
		RunEnd:    r.end,
		Direction: dir,
		Face:      face,
		Size:      fixed.Int26_6(f.Size * 64),
		Script:    runScript(runes[r.start:r.end]),
		Language:  language.NewLanguage("en"),
	}
	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	for _, g := range output.Glyphs {
		id := GlyphID(uint16(g.GlyphID)) //nolint:gosec // glyph ids of sfnt fonts fit in uint16
		x := out.Advance + float64(g.XOffset)/64
		y := -float64(g.YOffset) / 64
		out.Glyphs = append(out.Glyphs, id)
		out.Positions = append(out.Positions, geom.Pt(x, y))
		out.Advance += float64(g.Advance) / 64
		if f.FauxBold {
			out.Advance += f.Size * fauxBoldScale
		}
	}
}

func shapeSimple(out *Run, f Font, runes []rune, r dirRun) {
	n := r.end - r.start
	for i := range n {
		k := r.start + i
		if r.rtl {
			k = r.end - 1 - i
		}
		id, ok := f.Typeface.GlyphIndex(runes[k])
		if !ok {
			continue
		}
		out.Glyphs = append(out.Glyphs, id)
		out.Positions = append(out.Positions, geom.Pt(out.Advance, 0))
		out.Advance += f.GlyphAdvance(id)
	}
}

// runScript returns the script of the first non-space rune.
func runScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
