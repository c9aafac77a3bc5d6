package software

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/render"
)

var errPassEnded = errors.New("software: render pass already ended")

// Vertex attribute offsets shared by every geometry processor.
const (
	attrPos      = 0
	attrLocal    = 2
	attrColor    = 4
	attrCoverage = 8
	attrOffset   = 8
	attrRadii    = 10
)

// msaaPattern is the standard 4x sample pattern in pixel units.
var msaaPattern = [4][2]float64{
	{0.375, 0.125},
	{0.875, 0.375},
	{0.125, 0.625},
	{0.625, 0.875},
}

// binding is a texture bound to a unit.
type binding struct {
	tex   *texture
	state gpu.SamplerState
}

// pass implements render.RenderPass.
type pass struct {
	dev *Device
	rt  *renderTarget

	prog      *program
	pipe      *pipeline.Pipeline
	units     map[processor.Fragment]int
	bindings  []binding
	scissor   image.Rectangle
	scissored bool
	blend     blend.Description

	err   error
	ended bool
}

var _ render.RenderPass = (*pass)(nil)

func newPass(d *Device, rt *renderTarget) *pass {
	return &pass{dev: d, rt: rt}
}

func (p *pass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// BindProgram implements render.RenderPass. It assigns texture units to
// processors in pre-order, matching pipeline.Pipeline.Samplers.
func (p *pass) BindProgram(prog render.Program, pl *pipeline.Pipeline) error {
	if p.ended {
		return errPassEnded
	}
	pr, ok := prog.(*program)
	if !ok || pr.dev != p.dev {
		return ErrForeignResource
	}
	if pr.released {
		return errors.New("software: program used after release")
	}
	if pr.key != pl.Key() {
		return errors.New("software: program does not match pipeline")
	}
	p.prog, p.pipe = pr, pl
	p.units = make(map[processor.Fragment]int)
	unit := 0
	it := processor.NewIter(pl.Fragments()...)
	for fp := it.Next(); fp != nil; fp = it.Next() {
		p.units[fp] = unit
		unit += len(fp.Samplers())
	}
	p.bindings = make([]binding, len(pl.Samplers()))
	p.blend = pl.Blend()
	return nil
}

// BindTexture implements render.RenderPass.
func (p *pass) BindTexture(unit int, tex gpu.Texture, state gpu.SamplerState) {
	if p.ended {
		p.fail(errPassEnded)
		return
	}
	if unit < 0 || unit >= len(p.bindings) {
		p.fail(fmt.Errorf("software: texture unit %d out of range", unit))
		return
	}
	t, err := p.dev.lookup(tex)
	if err != nil {
		p.fail(err)
		return
	}
	p.bindings[unit] = binding{tex: t, state: state}
}

// SetScissor implements render.RenderPass.
func (p *pass) SetScissor(r image.Rectangle) {
	p.scissored = !r.Empty()
	p.scissor = r.Intersect(p.rt.tex.bounds())
}

// SetBlend implements render.RenderPass.
func (p *pass) SetBlend(desc blend.Description) {
	p.blend = desc
}

// SetViewport implements render.RenderPass. The viewport always covers
// the whole target.
func (p *pass) SetViewport(width, height int) {
	if width != p.rt.Width() || height != p.rt.Height() {
		p.fail(fmt.Errorf("software: viewport %dx%d differs from target %dx%d",
			width, height, p.rt.Width(), p.rt.Height()))
	}
}

// Draw implements render.RenderPass.
func (p *pass) Draw(vertices []float32, vertexCount int) error {
	stride, err := p.ready()
	if err != nil {
		return err
	}
	if vertexCount%3 != 0 || len(vertices) < vertexCount*stride {
		return fmt.Errorf("software: %d vertices of stride %d in %d floats", vertexCount, stride, len(vertices))
	}
	sh := p.shader()
	for i := 0; i < vertexCount; i += 3 {
		p.triangle(sh, [3][]float32{
			vertices[i*stride : (i+1)*stride],
			vertices[(i+1)*stride : (i+2)*stride],
			vertices[(i+2)*stride : (i+3)*stride],
		})
	}
	p.dev.stats.Draws++
	return nil
}

// DrawIndexed implements render.RenderPass.
func (p *pass) DrawIndexed(vertices []float32, indices []uint16) error {
	stride, err := p.ready()
	if err != nil {
		return err
	}
	n := len(vertices) / stride
	if len(indices)%3 != 0 {
		return fmt.Errorf("software: %d indices do not form triangles", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= n {
			return fmt.Errorf("software: index %d out of %d vertices", idx, n)
		}
	}
	sh := p.shader()
	vertex := func(i uint16) []float32 {
		return vertices[int(i)*stride : (int(i)+1)*stride]
	}
	for i := 0; i < len(indices); i += 3 {
		p.triangle(sh, [3][]float32{vertex(indices[i]), vertex(indices[i+1]), vertex(indices[i+2])})
	}
	p.dev.stats.Draws++
	return nil
}

// ready checks the pass can draw and returns the vertex stride.
func (p *pass) ready() (int, error) {
	if p.ended {
		return 0, errPassEnded
	}
	if p.pipe == nil {
		return 0, errors.New("software: draw without a program")
	}
	for unit, b := range p.bindings {
		if b.tex == nil {
			return 0, fmt.Errorf("software: texture unit %d not bound", unit)
		}
		if b.tex.released {
			return 0, fmt.Errorf("software: texture %q released while bound", b.tex.label)
		}
	}
	return processor.VertexStride(p.pipe.Geometry()), nil
}

// Clear implements render.RenderPass.
func (p *pass) Clear(rect image.Rectangle, color gpu.Color) error {
	if p.ended {
		return errPassEnded
	}
	t := p.rt.tex
	if rect.Empty() {
		rect = t.bounds()
	}
	rect = rect.Intersect(t.bounds())
	c := gpu.OutputSwizzle(t.format).Apply(color)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			t.store(0, x, y, c)
		}
	}
	p.dev.stats.Clears++
	return nil
}

// End implements render.RenderPass.
func (p *pass) End() error {
	if p.ended {
		return errPassEnded
	}
	p.ended = true
	return p.err
}

// Err implements render.RenderPass.
func (p *pass) Err() error { return p.err }

func (p *pass) shader() *shader {
	return &shader{units: p.units, bindings: p.bindings}
}

// edge is the signed area of (a, b, q): positive when q is on the
// interior side of a triangle with positive area.
func edge(a, b, q geom.Point) float64 {
	return (b.X-a.X)*(q.Y-a.Y) - (b.Y-a.Y)*(q.X-a.X)
}

// topLeft reports whether points exactly on edge a->b belong to the
// triangle.
func topLeft(a, b geom.Point) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dy < 0 || (dy == 0 && dx > 0)
}

func inside(a, b, q geom.Point) bool {
	if e := edge(a, b, q); e != 0 {
		return e > 0
	}
	return topLeft(a, b)
}

// triangle rasterizes one triangle with pixel-center sampling.
func (p *pass) triangle(sh *shader, v [3][]float32) {
	pos := func(i int) geom.Point {
		return geom.Pt(float64(v[i][attrPos]), float64(v[i][attrPos+1]))
	}
	a, b, c := pos(0), pos(1), pos(2)
	area := edge(a, b, c)
	if area == 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return
	}
	if area < 0 {
		b, c = c, b
		v[1], v[2] = v[2], v[1]
		area = -area
	}

	t := p.rt.tex
	minX := max(int(math.Floor(min(a.X, b.X, c.X))), 0)
	minY := max(int(math.Floor(min(a.Y, b.Y, c.Y))), 0)
	maxX := min(int(math.Ceil(max(a.X, b.X, c.X))), t.width)
	maxY := min(int(math.Ceil(max(a.Y, b.Y, c.Y))), t.height)

	weights := func(q geom.Point) [3]float64 {
		return [3]float64{edge(b, c, q) / area, edge(c, a, q) / area, edge(a, b, q) / area}
	}
	stride := len(v[0])
	interp := func(w [3]float64, out []float32) {
		for k := 0; k < stride; k++ {
			out[k] = float32(w[0]*float64(v[0][k]) + w[1]*float64(v[1][k]) + w[2]*float64(v[2][k]))
		}
	}
	local := func(w [3]float64) geom.Point {
		var x, y float64
		for i := range v {
			x += w[i] * float64(v[i][attrLocal])
			y += w[i] * float64(v[i][attrLocal+1])
		}
		return geom.Pt(x, y)
	}
	origin := local(weights(geom.Pt(0, 0)))
	dx := local(weights(geom.Pt(1, 0))).Sub(origin)
	dy := local(weights(geom.Pt(0, 1))).Sub(origin)

	samples := p.rt.samples
	attrs := make([]float32, stride)
	for y := minY; y < maxY; y++ {
		sy := t.storageRow(y)
		for x := minX; x < maxX; x++ {
			if p.scissored && !image.Pt(x, sy).In(p.scissor) {
				continue
			}
			center := geom.Pt(float64(x)+0.5, float64(y)+0.5)
			cov := 0.0
			if samples > 1 {
				for _, s := range msaaPattern {
					q := geom.Pt(float64(x)+s[0], float64(y)+s[1])
					if inside(a, b, q) && inside(b, c, q) && inside(c, a, q) {
						cov += 0.25
					}
				}
			} else if inside(a, b, center) && inside(b, c, center) && inside(c, a, center) {
				cov = 1
			}
			if cov == 0 {
				continue
			}
			interp(weights(center), attrs)
			f := &fragment{
				local:   geom.Pt(float64(attrs[attrLocal]), float64(attrs[attrLocal+1])),
				dx:      dx,
				dy:      dy,
				storage: geom.Pt(float64(x)+0.5, float64(sy)+0.5),
			}
			p.shade(sh, x, sy, attrs, cov*p.geometryCoverage(attrs), f)
		}
	}
}

// geometryCoverage returns the coverage produced by the vertex stage.
func (p *pass) geometryCoverage(attrs []float32) float64 {
	switch gp := p.pipe.Geometry().(type) {
	case *processor.QuadPerEdgeAA:
		if gp.AA() {
			return clamp01(float64(attrs[attrCoverage]))
		}
	case *processor.DefaultGeometry:
		if gp.HasCoverage() {
			return clamp01(float64(attrs[attrCoverage]))
		}
	case *processor.Ellipse:
		return processor.EllipseCoverage(
			float64(attrs[attrOffset]), float64(attrs[attrOffset+1]),
			float64(attrs[attrRadii]), float64(attrs[attrRadii+1]))
	}
	return 1
}

// applier is implemented by every blend description.
type applier interface {
	Apply(src, dst gpu.Color) gpu.Color
}

// shade runs the fragment stage for storage pixel (x, sy) and blends the
// result into the target.
func (p *pass) shade(sh *shader, x, sy int, attrs []float32, cov float64, f *fragment) {
	pl := p.pipe
	color := gpu.Color{R: attrs[attrColor], G: attrs[attrColor+1], B: attrs[attrColor+2], A: attrs[attrColor+3]}
	for _, fp := range pl.Colors() {
		color = sh.eval(fp, color, f)
	}
	if masks := pl.Masks(); len(masks) > 0 {
		c := float32(cov)
		in := gpu.Color{R: c, G: c, B: c, A: c}
		for _, fp := range masks {
			in = sh.eval(fp, in, f)
		}
		cov = float64(in.A)
	}
	if cov <= 0 {
		return
	}
	cov = min(cov, 1)
	src := pl.OutputSwizzle().Apply(color)

	t := p.rt.tex
	fb := t.texel(0, x, sy)
	dst := fb
	if d := pl.DstTexture(); d != nil {
		b := sh.bindings[len(sh.bindings)-1]
		dx, dy := x-d.Offset.X, sy-d.Offset.Y
		if dx >= 0 && dy >= 0 && dx < b.tex.width && dy < b.tex.height {
			dst = b.tex.texel(0, dx, dy)
		}
	}
	out := src
	if ap, ok := p.blend.(applier); ok {
		out = ap.Apply(src, dst)
	}
	k := float32(cov)
	t.store(0, x, sy, out.Scale(k).Add(fb.Scale(1-k)))
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
