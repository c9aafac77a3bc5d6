package text

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/gpucanvas/geom"
)

func loadGoRegular(t *testing.T) *SFNTTypeface {
	t.Helper()
	tf, err := ParseSFNT(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseSFNT(goregular) error: %v", err)
	}
	return tf
}

func TestParseSFNTEmpty(t *testing.T) {
	if _, err := ParseSFNT(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("ParseSFNT(nil) error = %v, want ErrEmptyFontData", err)
	}
	if _, err := ParseSFNT([]byte("not a font")); err == nil {
		t.Error("ParseSFNT(garbage) should fail")
	}
}

func TestSFNTTypefaceIDsUnique(t *testing.T) {
	a, b := loadGoRegular(t), loadGoRegular(t)
	if a.ID() == b.ID() {
		t.Errorf("typeface ids collide: %d", a.ID())
	}
	if a.HasColor() {
		t.Error("sfnt typeface should not report color glyphs")
	}
}

func TestSFNTGlyphPath(t *testing.T) {
	tf := loadGoRegular(t)
	id, ok := tf.GlyphIndex('H')
	if !ok {
		t.Fatal("GlyphIndex('H') not found")
	}
	p, err := tf.GlyphPath(id, 32)
	if err != nil {
		t.Fatalf("GlyphPath error: %v", err)
	}
	if p.IsEmpty() {
		t.Fatal("outline of 'H' is empty")
	}
	b := p.Bounds()
	// Ink sits above the baseline with y pointing down.
	if b.Top >= 0 || b.Bottom > 0.5 {
		t.Errorf("bounds = %+v, want ink above the baseline", b)
	}
	if h := -b.Top; h < 16 || h > 32 {
		t.Errorf("cap height = %v at 32px, want within (16, 32)", h)
	}

	space, _ := tf.GlyphIndex(' ')
	sp, err := tf.GlyphPath(space, 32)
	if err != nil {
		t.Fatalf("GlyphPath(space) error: %v", err)
	}
	if !sp.IsEmpty() {
		t.Error("space glyph should have an empty outline")
	}
	if adv := tf.GlyphAdvance(space, 32); adv <= 0 {
		t.Errorf("space advance = %v, want > 0", adv)
	}

	if _, err := tf.GlyphPath(GlyphID(tf.NumGlyphs()), 32); !errors.Is(err, ErrGlyphNotFound) {
		t.Errorf("out of range glyph error = %v, want ErrGlyphNotFound", err)
	}
}

func TestSFNTGlyphIndexMissing(t *testing.T) {
	tf := loadGoRegular(t)
	if _, ok := tf.GlyphIndex('\U0001F600'); ok {
		t.Error("Go Regular should not map an emoji")
	}
}

func TestFontFauxStyles(t *testing.T) {
	tf := loadGoRegular(t)
	id, _ := tf.GlyphIndex('l')
	regular, err := NewFont(tf, 40).GlyphPath(id)
	if err != nil {
		t.Fatal(err)
	}
	italic, err := Font{Typeface: tf, Size: 40, FauxItalic: true}.GlyphPath(id)
	if err != nil {
		t.Fatal(err)
	}
	if italic.Bounds().Right <= regular.Bounds().Right {
		t.Errorf("italic right edge %v should exceed regular %v",
			italic.Bounds().Right, regular.Bounds().Right)
	}

	bold := Font{Typeface: tf, Size: 40, FauxBold: true}
	bp, err := bold.GlyphPath(id)
	if err != nil {
		t.Fatal(err)
	}
	if bp.Bounds().Width() <= regular.Bounds().Width() {
		t.Error("faux bold outline should be wider than the regular one")
	}
	if bold.GlyphAdvance(id) <= NewFont(tf, 40).GlyphAdvance(id) {
		t.Error("faux bold should widen the advance")
	}
}

func TestFontGlyphImage(t *testing.T) {
	tf := loadGoRegular(t)
	id, _ := tf.GlyphIndex('o')
	img, off, err := NewFont(tf, 24).GlyphImage(id)
	if err != nil {
		t.Fatalf("GlyphImage error: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("empty glyph image")
	}
	if off.Y >= 0 {
		t.Errorf("image offset %+v should start above the baseline", off)
	}
	a, ok := img.(*image.Alpha)
	if !ok {
		t.Fatalf("glyph image type = %T, want *image.Alpha", img)
	}
	var ink int
	for _, v := range a.Pix {
		ink += int(v)
	}
	if ink == 0 {
		t.Error("glyph image has no coverage")
	}
}

func TestGlyphCache(t *testing.T) {
	tf := loadGoRegular(t)
	c := NewGlyphCache(2)
	f := NewFont(tf, 16)
	a, _ := tf.GlyphIndex('a')
	b, _ := tf.GlyphIndex('b')
	cc, _ := tf.GlyphIndex('c')

	p1, err := c.Path(f, a)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := c.Path(f, a)
	if p1 != p2 {
		t.Error("second lookup should return the cached outline")
	}
	if _, err := c.Path(f.WithSize(17), a); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2 (sizes are keyed separately)", c.Len())
	}
	_, _ = c.Path(f, b)
	_, _ = c.Path(f, cc)

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 4 {
		t.Errorf("stats = %+v, want 1 hit and 4 misses", st)
	}
	if st.Evictions != 2 {
		t.Errorf("evictions = %d, want 2", st.Evictions)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestShapeLatin(t *testing.T) {
	f := NewFont(loadGoRegular(t), 20)
	run, err := Shape("Hello", f)
	if err != nil {
		t.Fatalf("Shape error: %v", err)
	}
	if run.Len() != 5 || len(run.Positions) != 5 {
		t.Fatalf("glyphs = %d, positions = %d, want 5", run.Len(), len(run.Positions))
	}
	if run.RTL {
		t.Error("Latin text should be left-to-right")
	}
	for i := 1; i < run.Len(); i++ {
		if run.Positions[i].X <= run.Positions[i-1].X {
			t.Errorf("glyph %d at x=%v not right of glyph %d at x=%v",
				i, run.Positions[i].X, i-1, run.Positions[i-1].X)
		}
	}
	if run.Advance <= run.Positions[4].X {
		t.Errorf("advance %v should pass the last glyph origin %v", run.Advance, run.Positions[4].X)
	}
	h, _ := f.Typeface.GlyphIndex('H')
	if run.Glyphs[0] != h {
		t.Errorf("first glyph = %d, want %d", run.Glyphs[0], h)
	}
}

func TestShapeEmpty(t *testing.T) {
	run, err := Shape("", NewFont(loadGoRegular(t), 12))
	if err != nil || run.Len() != 0 {
		t.Errorf("Shape(\"\") = %+v, %v", run, err)
	}
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestBitmapTypeface(t *testing.T) {
	tf := NewBitmapTypeface(10)
	id := tf.Add('*', BitmapGlyph{
		Image:   solidImage(10, 10, color.RGBA{R: 255, A: 255}),
		Offset:  geom.Pt(0, -8),
		Advance: 11,
	})
	if !tf.HasColor() {
		t.Error("bitmap typeface should report color glyphs")
	}
	got, ok := tf.GlyphIndex('*')
	if !ok || got != id {
		t.Fatalf("GlyphIndex('*') = %d, %v", got, ok)
	}
	if _, err := tf.GlyphPath(id, 10); !errors.Is(err, ErrNoOutline) {
		t.Errorf("GlyphPath error = %v, want ErrNoOutline", err)
	}
	img, off, err := tf.GlyphImage(id, 20)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Errorf("scaled image = %v, want 20x20", img.Bounds())
	}
	if off != geom.Pt(0, -16) {
		t.Errorf("scaled offset = %+v, want (0, -16)", off)
	}
	if adv := tf.GlyphAdvance(id, 20); adv != 22 {
		t.Errorf("advance = %v, want 22", adv)
	}
	if _, _, err := tf.GlyphImage(0, 10); !errors.Is(err, ErrGlyphNotFound) {
		t.Errorf("missing glyph error = %v, want ErrGlyphNotFound", err)
	}
}

func TestShapeRightToLeft(t *testing.T) {
	tf := NewBitmapTypeface(10)
	alef := tf.Add('א', BitmapGlyph{Image: solidImage(8, 8, color.White), Advance: 10})
	bet := tf.Add('ב', BitmapGlyph{Image: solidImage(8, 8, color.White), Advance: 10})

	run, err := Shape("אב", NewFont(tf, 10))
	if err != nil {
		t.Fatal(err)
	}
	if !run.RTL {
		t.Error("Hebrew text should be right-to-left")
	}
	// Visual order puts the first logical letter on the right.
	if run.Len() != 2 || run.Glyphs[0] != bet || run.Glyphs[1] != alef {
		t.Errorf("glyphs = %v, want [%d %d]", run.Glyphs, bet, alef)
	}
	if run.Positions[1].X != 10 || run.Advance != 20 {
		t.Errorf("positions = %v advance = %v", run.Positions, run.Advance)
	}
}
