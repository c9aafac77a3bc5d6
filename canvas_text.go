package gpucanvas

import (
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/ops"
	"github.com/gogpu/gpucanvas/path"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/text"
)

// DrawText shapes s with font and draws it with the baseline starting at
// (x, y).
func (c *Canvas) DrawText(s string, x, y float64, font text.Font, p *Paint) {
	run, err := text.Shape(s, font)
	if err != nil {
		Logger().Warn("text shaping failed", "err", err)
		return
	}
	if run.Len() == 0 {
		return
	}
	pos := make([]geom.Point, run.Len())
	for i, q := range run.Positions {
		pos[i] = geom.Pt(q.X+x, q.Y+y)
	}
	c.DrawGlyphs(run.Glyphs, pos, font, p)
}

// DrawGlyphs draws glyphs with their origins at positions.
//
// Glyphs are generated at device resolution: the font size and positions
// are scaled by the length of the matrix x-axis and the matrix is
// compensated by the inverse scale.
func (c *Canvas) DrawGlyphs(glyphs []text.GlyphID, positions []geom.Point, font text.Font, p *Paint) {
	p = paintOrDefault(p)
	if len(glyphs) == 0 || len(glyphs) != len(positions) || font.Typeface == nil || font.Size <= 0 {
		return
	}
	if c.nothingToDraw(p) {
		return
	}
	s := c.state.matrix.AxisScale()
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return
	}

	scaled := font.WithSize(font.Size * s)
	pos := make([]geom.Point, len(positions))
	for i, q := range positions {
		pos[i] = q.Mul(s)
	}
	if p.Style == StyleStroke {
		p = p.Clone()
		p.StrokeWidth *= s
	}

	c.Save()
	defer c.Restore()
	c.Concat(geom.Scale(1/s, 1/s))

	if font.Typeface.HasColor() {
		c.drawColorGlyphs(glyphs, pos, scaled, p)
		return
	}

	merged := path.New()
	for i, g := range glyphs {
		gp, err := c.surface.ctx.glyphs.Path(scaled, g)
		if err != nil {
			Logger().Debug("glyph outline unavailable, drawing glyph mask", "glyph", g, "err", err)
			c.drawGlyphMask(glyphs, pos, scaled, p)
			return
		}
		if gp.IsEmpty() {
			continue
		}
		merged.AddPath(gp.Transform(geom.Translate(pos[i].X, pos[i].Y)))
	}
	c.DrawPath(merged, p)
}

// drawColorGlyphs draws every glyph image as an image.
func (c *Canvas) drawColorGlyphs(glyphs []text.GlyphID, pos []geom.Point, font text.Font, p *Paint) {
	for i, g := range glyphs {
		img, off, err := font.GlyphImage(g)
		if err != nil {
			Logger().Debug("glyph image unavailable", "glyph", g, "err", err)
			continue
		}
		at := pos[i].Add(off)
		c.drawTransientImage(img, at, p)
	}
}

// drawGlyphMask composites every glyph image into one coverage mask and
// draws it with p.
func (c *Canvas) drawGlyphMask(glyphs []text.GlyphID, pos []geom.Point, font text.Font, p *Paint) {
	type placed struct {
		img image.Image
		at  image.Point
	}
	var (
		parts  []placed
		bounds image.Rectangle
	)
	for i, g := range glyphs {
		img, off, err := font.GlyphImage(g)
		if err != nil || img == nil {
			continue
		}
		at := pos[i].Add(off)
		pt := image.Pt(int(math.Round(at.X)), int(math.Round(at.Y)))
		parts = append(parts, placed{img: img, at: pt})
		bounds = bounds.Union(img.Bounds().Sub(img.Bounds().Min).Add(pt))
	}
	if bounds.Empty() {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for _, part := range parts {
		b := part.img.Bounds()
		dst := image.Rectangle{Min: part.at.Sub(bounds.Min), Max: part.at.Sub(bounds.Min).Add(b.Size())}
		draw.Draw(mask, dst, part.img, b.Min, draw.Over)
	}
	tex := c.uploadTransient("glyph-mask", mask)
	if tex == nil {
		return
	}
	src := geom.WH(float64(bounds.Dx()), float64(bounds.Dy()))
	view := c.state.matrix.Multiply(geom.Translate(float64(bounds.Min.X), float64(bounds.Min.Y)))
	texFP := processor.NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity())
	aa := c.aaType(p.Antialias, view.MapRect(src), true)
	c.drawTextured(true, texFP, []ops.RectEntry{{
		Rect:        src,
		ViewMatrix:  view,
		LocalMatrix: geom.Identity(),
	}}, nil, aa, p)
}

// drawTransientImage uploads img for a single draw at the local position
// at.
func (c *Canvas) drawTransientImage(img image.Image, at geom.Point, p *Paint) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	var (
		tex       gpu.Texture
		alphaOnly bool
	)
	if a, ok := img.(*image.Alpha); ok {
		tex = c.uploadTransient("glyph-image", a)
		alphaOnly = true
	} else {
		rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
		t, err := c.surface.ctx.uploadPixels("glyph-image", gpu.FormatRGBA8, b.Dx(), b.Dy(),
			gpu.OriginTopLeft, rgba.Pix, rgba.Stride)
		if err != nil {
			Logger().Warn("glyph image upload failed", "err", err)
			return
		}
		c.surface.retain(t)
		tex = t
	}
	if tex == nil {
		return
	}
	src := geom.WH(float64(b.Dx()), float64(b.Dy()))
	view := c.state.matrix.Multiply(geom.Translate(at.X, at.Y))
	texFP := processor.NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity())
	aa := c.aaType(p.Antialias, view.MapRect(src), true)
	c.drawTextured(alphaOnly, texFP, []ops.RectEntry{{
		Rect:        src,
		ViewMatrix:  view,
		LocalMatrix: geom.Identity(),
	}}, nil, aa, p)
}
