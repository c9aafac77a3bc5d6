package gpucanvas

import (
	"image"
	"math"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/internal/stroke"
	"github.com/gogpu/gpucanvas/ops"
	"github.com/gogpu/gpucanvas/path"
	"github.com/gogpu/gpucanvas/processor"
)

// maxAtlasRects bounds the sprites recorded into one op.
const maxAtlasRects = 4096

// DrawRect draws r with p.
func (c *Canvas) DrawRect(r geom.Rect, p *Paint) {
	p = paintOrDefault(p)
	if p.Style == StyleStroke {
		rp := path.New()
		rp.AddRect(r)
		c.DrawPath(rp, p)
		return
	}
	if r.IsEmpty() || c.nothingToDraw(p) {
		return
	}
	dev := c.state.matrix.MapRect(r)
	if _, ok := dev.Intersect(c.ClipBounds()); !ok {
		return
	}
	c.fillRect(r, dev, p)
}

// DrawRRect draws a rounded rectangle with p.
func (c *Canvas) DrawRRect(rr geom.RRect, p *Paint) {
	rp := path.New()
	rp.AddRRect(rr)
	c.DrawPath(rp, p)
}

// DrawOval draws the ellipse inscribed in r with p.
func (c *Canvas) DrawOval(r geom.Rect, p *Paint) {
	rp := path.New()
	rp.AddOval(r)
	c.DrawPath(rp, p)
}

// DrawPath draws p with paint. Stroke paints are expanded to a filled
// outline first.
func (c *Canvas) DrawPath(p *path.Path, paint *Paint) {
	paint = paintOrDefault(paint)
	if p == nil || p.IsEmpty() {
		return
	}
	if paint.Style == StyleStroke {
		p = stroke.Expand(p, paint.strokeStyle())
		if p == nil || p.IsEmpty() {
			return
		}
	}
	c.fillPath(p, paint)
}

// fillPath fills a local-space path with the cheapest op that reproduces
// it: a clear, a rect or rrect op, a triangulation, or a coverage mask.
func (c *Canvas) fillPath(local *path.Path, p *Paint) {
	if c.nothingToDraw(p) {
		return
	}
	m := c.state.matrix
	devPath := local.Transform(m)
	devBounds := devPath.Bounds()
	clipBounds := c.ClipBounds()
	if _, ok := devBounds.Intersect(clipBounds); !ok {
		return
	}

	if r, ok := local.AsRect(); ok {
		c.fillRect(r, devBounds, p)
		return
	}
	if rr, ok := local.AsRRect(); ok && m.IsScaleTranslate() {
		aa := c.aaType(p.Antialias, devBounds, false)
		if op := ops.NewRRectOp(c.vertexColor(p), rr, m, aa); op != nil {
			c.record(op, p)
			return
		}
	}
	aa := c.aaType(p.Antialias, devBounds, false)
	op, err := ops.NewTriangulatingPathOp(c.vertexColor(p), devPath, m, aa)
	if err == nil {
		c.record(op, p)
		return
	}
	Logger().Debug("path drawn through coverage mask", "err", err)
	c.fillPathMask(devPath, clipBounds, p)
}

// fillRect draws the local rectangle r whose device bounds are dev.
func (c *Canvas) fillRect(r, dev geom.Rect, p *Paint) {
	if c.drawAsClear(dev, p) {
		return
	}
	aa := c.aaType(p.Antialias, dev, true)
	c.record(ops.NewFillRectOp(c.vertexColor(p), r, c.state.matrix, aa), p)
}

// fillPathMask rasterizes a device path on the CPU and draws the coverage
// through a textured rectangle.
func (c *Canvas) fillPathMask(devPath *path.Path, clipBounds geom.Rect, p *Paint) {
	r, ok := devPath.Bounds().Intersect(clipBounds)
	if !ok {
		return
	}
	r = r.RoundOut()
	mask := devPath.Rasterize(r.ImageRect())
	if !p.Antialias {
		for i, v := range mask.Pix {
			if v >= 128 {
				mask.Pix[i] = 0xff
			} else {
				mask.Pix[i] = 0
			}
		}
	}
	tex := c.uploadTransient("path-mask", mask)
	if tex == nil {
		return
	}
	inv, ok := c.state.matrix.Invert()
	if !ok {
		return
	}
	op := ops.NewFillRectOpEntries([]ops.RectEntry{{
		Rect:        r,
		ViewMatrix:  geom.Identity(),
		LocalMatrix: inv,
		Color:       c.vertexColor(p),
	}}, ops.AANone)
	if !c.applyPaint(op, p) {
		return
	}
	// Local coordinates go back to device space, then into the mask.
	toMask := geom.Translate(-r.Left, -r.Top).Multiply(c.state.matrix)
	op.AddMask(processor.NewTextureEffect(tex, gpu.SamplerState{Filter: gpu.FilterNearest}, toMask))
	c.finish(op)
}

// uploadTransient uploads a top-down alpha mask that lives until the next
// flush.
func (c *Canvas) uploadTransient(label string, mask *image.Alpha) gpu.Texture {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	tex, err := c.surface.ctx.uploadPixels(label, gpu.FormatAlpha8, w, h, gpu.OriginTopLeft, mask.Pix, mask.Stride)
	if err != nil {
		Logger().Warn("mask upload failed", "label", label, "err", err)
		return nil
	}
	c.surface.retain(tex)
	return tex
}

// drawAsClear turns an opaque pixel-aligned rectangle into a ClearOp when
// the clip does not cut into it.
func (c *Canvas) drawAsClear(dev geom.Rect, p *Paint) bool {
	if !p.isSolid() || p.Style != StyleFill || !c.state.matrix.RectStaysRect() {
		return false
	}
	color := p.Color
	color.A *= float32(c.state.alpha)
	switch c.state.blendMode {
	case blend.Src:
	case blend.SrcOver:
		if !color.IsOpaque() {
			return false
		}
	default:
		return false
	}
	if !dev.IsPixelAligned() {
		return false
	}
	r, ok := dev.Round().Intersect(c.surface.bounds())
	if !ok {
		return false
	}
	clip := c.state.clip
	if !clip.IsRect() || !clip.rect.Contains(r) {
		return false
	}
	c.surface.addOp(ops.NewClearOp(color.Premultiply(), c.scissorFor(r)))
	return true
}

// nothingToDraw reports draws that cannot change the target.
func (c *Canvas) nothingToDraw(p *Paint) bool {
	mode := c.state.blendMode
	if mode == blend.Dst {
		return true
	}
	if !mode.SkipsTransparentSource() {
		return false
	}
	if p.ColorFilter != nil && p.ColorFilter.affectsAlpha() {
		return false
	}
	return c.paintAlpha(p) == 0
}

// paintAlpha is the paint alpha combined with the canvas alpha.
func (c *Canvas) paintAlpha(p *Paint) float32 {
	return p.Color.A * float32(c.state.alpha)
}

// vertexColor returns the premultiplied color fed into the color stage.
// With a shader the alpha is applied by a processor instead.
func (c *Canvas) vertexColor(p *Paint) gpu.Color {
	if p.Shader != nil {
		return gpu.White
	}
	col := p.Color
	col.A = c.paintAlpha(p)
	return col.Premultiply()
}

// aaType picks the antialiasing of a draw covering dev. rect reports that
// the geometry is exactly dev.
func (c *Canvas) aaType(antialias bool, dev geom.Rect, rect bool) ops.AAType {
	if c.surface.rt.SampleCount() > 1 {
		return ops.AAMSAA
	}
	if c.state.matrix.RotationDegrees()%90 != 0 {
		return ops.AACoverage
	}
	if antialias && (!rect || !dev.IsPixelAligned()) {
		return ops.AACoverage
	}
	return ops.AANone
}

// applyPaint adds the paint's color and coverage processors to op. It
// returns false when a processor cannot be built.
func (c *Canvas) applyPaint(op drawOp, p *Paint) bool {
	args := fpArgs{ctx: c.surface.ctx}
	if p.Shader != nil {
		fp := p.Shader.asFragment(args)
		if fp == nil {
			Logger().Debug("shader produced no processor; draw skipped")
			return false
		}
		op.AddColor(fp)
		if a := c.paintAlpha(p); a != 1 {
			op.AddColor(processor.NewConstColor(gpu.Color{R: a, G: a, B: a, A: a}, processor.InputModulateRGBA))
		}
	}
	return c.applyFilters(op, p, args)
}

func (c *Canvas) applyFilters(op drawOp, p *Paint, args fpArgs) bool {
	if p.ColorFilter != nil {
		op.AddColor(p.ColorFilter.asFragment())
	}
	if p.MaskFilter != nil {
		fp := p.MaskFilter.asFragment(args)
		if fp == nil {
			Logger().Debug("mask filter produced no processor; draw skipped")
			return false
		}
		op.AddMask(fp)
	}
	return true
}

// record applies the paint and records op.
func (c *Canvas) record(op drawOp, p *Paint) {
	if !c.applyPaint(op, p) {
		return
	}
	c.finish(op)
}

// finish clips op, sets the blend mode and records it.
func (c *Canvas) finish(op drawOp) {
	if !c.applyClip(op) {
		return
	}
	op.SetBlendMode(c.state.blendMode)
	c.surface.addOp(op)
}

// DrawImage draws img with its top-left corner at (x, y).
func (c *Canvas) DrawImage(img *Image, x, y float64, p *Paint) {
	if img == nil {
		return
	}
	c.DrawImageRect(img, img.Bounds(), geom.XYWH(x, y, float64(img.width), float64(img.height)), p)
}

// DrawImageRect draws the src part of img into dst. Alpha-only images are
// filled with the paint's color or shader; color images are modulated by
// the paint alpha.
func (c *Canvas) DrawImageRect(img *Image, src, dst geom.Rect, p *Paint) {
	p = paintOrDefault(p)
	if img == nil || src.IsEmpty() || dst.IsEmpty() || c.nothingToDraw(p) {
		return
	}
	view := c.state.matrix.Multiply(rectToRect(src, dst))
	devBounds := view.MapRect(src)
	if _, ok := devBounds.Intersect(c.ClipBounds()); !ok {
		return
	}
	texFP := c.surface.ctx.imageFragment(img, gpu.DefaultSampler, geom.Identity())
	if texFP == nil {
		return
	}
	aa := c.aaType(p.Antialias, devBounds, true)
	c.drawTextured(img.IsAlphaOnly(), texFP, []ops.RectEntry{{
		Rect:        src,
		ViewMatrix:  view,
		LocalMatrix: geom.Identity(),
	}}, nil, aa, p)
}

// drawTextured records rectangles sampling texFP in their local
// coordinates. colors, when set, holds one unpremultiplied color per
// entry modulating the texture.
func (c *Canvas) drawTextured(alphaOnly bool, texFP processor.Fragment, entries []ops.RectEntry,
	colors []gpu.Color, aa ops.AAType, p *Paint) {
	a := c.paintAlpha(p)
	args := fpArgs{ctx: c.surface.ctx}

	var fps []processor.Fragment
	vertex := gpu.Color{R: a, G: a, B: a, A: a}
	switch {
	case alphaOnly && p.Shader != nil:
		shaderFP := p.Shader.asFragment(args)
		if shaderFP == nil {
			return
		}
		vertex = gpu.White
		fps = append(fps, processor.RunInSeries(shaderFP, texFP))
		if a != 1 {
			fps = append(fps, processor.NewConstColor(gpu.Color{R: a, G: a, B: a, A: a}, processor.InputModulateRGBA))
		}
	case alphaOnly:
		vertex = c.vertexColor(p)
		fps = append(fps, texFP)
	case colors != nil:
		fps = append(fps, processor.NewModulate(texFP))
	default:
		fps = append(fps, processor.MulChildByInputAlpha(texFP))
	}

	for i := range entries {
		if colors == nil {
			entries[i].Color = vertex
			continue
		}
		col := colors[i]
		col.A *= a
		entries[i].Color = col.Premultiply()
	}
	for len(entries) > 0 {
		n := min(len(entries), maxAtlasRects)
		op := ops.NewFillRectOpEntries(entries[:n], aa)
		entries = entries[n:]
		for _, fp := range fps {
			op.AddColor(fp)
		}
		if !c.applyFilters(op, p, args) {
			return
		}
		c.finish(op)
	}
}

// DrawAtlas draws sprites cut from img. Sprite i is the srcRects[i] part
// of the image, moved to its origin and placed by xforms[i]. colors is
// optional; when set each sprite is multiplied by its color.
func (c *Canvas) DrawAtlas(img *Image, xforms []geom.Matrix, srcRects []geom.Rect, colors []gpu.Color, p *Paint) {
	p = paintOrDefault(p)
	if img == nil || len(xforms) == 0 || len(xforms) != len(srcRects) ||
		(colors != nil && len(colors) != len(xforms)) || c.nothingToDraw(p) {
		return
	}
	texFP := c.surface.ctx.imageFragment(img, gpu.DefaultSampler, geom.Identity())
	if texFP == nil {
		return
	}
	m := c.state.matrix
	entries := make([]ops.RectEntry, 0, len(xforms))
	var bounds geom.Rect
	for i, src := range srcRects {
		if src.IsEmpty() {
			continue
		}
		view := m.Multiply(xforms[i]).Multiply(geom.Translate(-src.Left, -src.Top))
		entries = append(entries, ops.RectEntry{
			Rect:        src,
			ViewMatrix:  view,
			LocalMatrix: geom.Identity(),
		})
		bounds = bounds.Union(view.MapRect(src))
	}
	if len(entries) == 0 {
		return
	}
	if _, ok := bounds.Intersect(c.ClipBounds()); !ok {
		return
	}
	var cols []gpu.Color
	if colors != nil {
		cols = make([]gpu.Color, 0, len(entries))
		for i, src := range srcRects {
			if !src.IsEmpty() {
				cols = append(cols, colors[i])
			}
		}
	}
	aa := c.aaType(p.Antialias, bounds, true)
	for _, x := range xforms {
		if !x.RectStaysRect() {
			aa = c.aaType(p.Antialias, bounds, false)
			break
		}
	}
	c.drawTextured(img.IsAlphaOnly(), texFP, entries, cols, aa, p)
}

// DrawMesh draws a triangle mesh. texCoords are the local coordinates seen
// by the paint's shader and default to positions. colors are optional
// unpremultiplied per-vertex colors; with a shader they modulate it.
// indices may be nil for a plain triangle list.
func (c *Canvas) DrawMesh(positions, texCoords []geom.Point, colors []gpu.Color, indices []uint16, p *Paint) {
	p = paintOrDefault(p)
	if len(positions) < 3 || c.nothingToDraw(p) {
		return
	}
	if _, ok := c.state.matrix.MapRect(geom.BoundsOf(positions...)).Intersect(c.ClipBounds()); !ok {
		return
	}
	a := c.paintAlpha(p)
	var premul []gpu.Color
	if colors != nil {
		premul = make([]gpu.Color, len(colors))
		for i, col := range colors {
			col.A *= a
			premul[i] = col.Premultiply()
		}
	}
	aa := ops.AANone
	if c.surface.rt.SampleCount() > 1 {
		aa = ops.AAMSAA
	}
	op := ops.NewMeshOp(positions, texCoords, premul, indices, c.vertexColor(p), c.state.matrix, aa)
	if op == nil {
		Logger().Debug("invalid mesh; draw skipped", "vertices", len(positions), "indices", len(indices))
		return
	}
	if colors == nil || p.Shader == nil {
		c.record(op, p)
		return
	}
	args := fpArgs{ctx: c.surface.ctx}
	fp := p.Shader.asFragment(args)
	if fp == nil {
		return
	}
	op.AddColor(processor.NewModulate(fp))
	if !c.applyFilters(op, p, args) {
		return
	}
	c.finish(op)
}

// rectToRect maps src onto dst.
func rectToRect(src, dst geom.Rect) geom.Matrix {
	sx := dst.Width() / src.Width()
	sy := dst.Height() / src.Height()
	if math.IsInf(sx, 0) || math.IsInf(sy, 0) {
		return geom.Identity()
	}
	return geom.Translate(dst.Left, dst.Top).
		Multiply(geom.Scale(sx, sy)).
		Multiply(geom.Translate(-src.Left, -src.Top))
}
