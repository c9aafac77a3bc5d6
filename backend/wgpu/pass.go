package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/render"
)

var (
	errNoProgram  = errors.New("wgpu: draw without a bound program")
	errPassEnded  = errors.New("wgpu: render pass already ended")
	errUnboundTex = errors.New("wgpu: texture unit not bound")
)

type binding struct {
	tex   *texture
	state gpu.SamplerState
}

// pass records into one hal render pass. Vertex, index and uniform data
// go into per-draw buffers that are destroyed when the submission
// completes.
type pass struct {
	dev *Device
	rt  *renderTarget
	enc hal.CommandEncoder
	rp  hal.RenderPassEncoder

	prog     *program
	pipe     *pipeline.Pipeline
	uniforms []float32
	bindings []binding
	group    hal.BindGroup

	scissor image.Rectangle
	culled  bool

	buffers []hal.Buffer
	groups  []hal.BindGroup
	err     error
	ended   bool
}

// BeginRenderPass implements render.Device. The pass loads the current
// contents of the target.
func (d *Device) BeginRenderPass(rt gpu.RenderTarget) (render.RenderPass, error) {
	r, err := d.lookupTarget(rt)
	if err != nil {
		return nil, err
	}
	enc, err := d.beginEncoder("gpucanvas_pass")
	if err != nil {
		return nil, err
	}
	attachment := hal.RenderPassColorAttachment{
		View:    r.tex.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if r.msaa != nil {
		attachment.View = r.msaaView
		attachment.ResolveTarget = r.tex.view
	}
	p := &pass{
		dev:     d,
		rt:      r,
		enc:     enc,
		scissor: gpu.Bounds(r),
	}
	p.rp = enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "gpucanvas_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	p.rp.SetViewport(0, 0, float32(r.tex.width), float32(r.tex.height), 0, 1)
	return p, nil
}

func (p *pass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// BindProgram implements render.RenderPass.
func (p *pass) BindProgram(prog render.Program, pl *pipeline.Pipeline) error {
	if p.ended {
		return errPassEnded
	}
	pr, ok := prog.(*program)
	if !ok || pr.dev != p.dev {
		return ErrForeignResource
	}
	if pr.released {
		return fmt.Errorf("wgpu: program released")
	}
	if pr.key != pl.Key() {
		return fmt.Errorf("wgpu: pipeline does not match program")
	}
	rp, err := pr.renderPipeline(p.rt)
	if err != nil {
		return err
	}
	p.rp.SetPipeline(rp)
	l := newLayout(pl)
	p.prog = pr
	p.pipe = pl
	p.uniforms = packUniforms(pl, l, p.rt.tex.width, p.rt.tex.height, p.rt.tex.origin)
	p.bindings = make([]binding, len(pl.Samplers()))
	p.group = nil
	return nil
}

// BindTexture implements render.RenderPass.
func (p *pass) BindTexture(unit int, tex gpu.Texture, state gpu.SamplerState) {
	if unit < 0 || unit >= len(p.bindings) {
		p.fail(fmt.Errorf("wgpu: texture unit %d out of range", unit))
		return
	}
	t, err := p.dev.lookup(tex)
	if err != nil {
		p.fail(err)
		return
	}
	p.bindings[unit] = binding{tex: t, state: state}
	p.group = nil
}

// SetScissor implements render.RenderPass. r is in storage coordinates;
// an empty rectangle disables scissoring.
func (p *pass) SetScissor(r image.Rectangle) {
	bounds := gpu.Bounds(p.rt)
	if r.Empty() {
		r = bounds
	}
	r = r.Intersect(bounds)
	p.scissor = r
	p.culled = r.Empty()
	if !p.culled {
		p.rp.SetScissorRect(uint32(r.Min.X), uint32(r.Min.Y), uint32(r.Dx()), uint32(r.Dy()))
	}
}

// SetBlend implements render.RenderPass. The blend state is part of the
// render pipeline, so desc must match the bound program.
func (p *pass) SetBlend(desc blend.Description) {
	if p.pipe == nil || desc == nil {
		return
	}
	if desc.Key() != p.pipe.Blend().Key() {
		p.fail(fmt.Errorf("wgpu: blend %#x differs from the bound program", desc.Key()))
	}
}

// SetViewport implements render.RenderPass.
func (p *pass) SetViewport(width, height int) {
	if width != p.rt.tex.width || height != p.rt.tex.height {
		p.fail(fmt.Errorf("wgpu: viewport %dx%d does not match target %dx%d",
			width, height, p.rt.tex.width, p.rt.tex.height))
	}
}

// bindGroup returns the bind group of the current program, uniforms and
// textures, creating it when any of them changed.
func (p *pass) bindGroup() (hal.BindGroup, error) {
	if p.group != nil {
		return p.group, nil
	}
	ubuf, err := p.buffer("gpucanvas_uniforms", gputypes.BufferUsageUniform, float32Bytes(p.uniforms))
	if err != nil {
		return nil, err
	}
	entries := []gputypes.BindGroupEntry{{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: ubuf.NativeHandle(), Offset: 0, Size: uint64(4 * len(p.uniforms)),
		},
	}}
	for unit, b := range p.bindings {
		if b.tex == nil || b.tex.released {
			return nil, fmt.Errorf("%w: %d", errUnboundTex, unit)
		}
		smp, err := p.dev.sampler(b.state)
		if err != nil {
			return nil, err
		}
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  uint32(textureBinding(unit)),
				Resource: gputypes.TextureViewBinding{TextureView: b.tex.view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(samplerBinding(unit)),
				Resource: gputypes.SamplerBinding{Sampler: smp.NativeHandle()},
			})
	}
	group, err := p.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "gpucanvas_bind",
		Layout:  p.prog.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	p.groups = append(p.groups, group)
	p.group = group
	return group, nil
}

// buffer creates a transient buffer holding data.
func (p *pass) buffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	// Queue writes must be a multiple of four bytes.
	if n := len(data) % 4; n != 0 {
		data = append(data, make([]byte, 4-n)...)
	}
	buf, err := p.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	p.buffers = append(p.buffers, buf)
	p.dev.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// prepare binds the resources of a draw. It reports false when the draw
// is scissored away.
func (p *pass) prepare(vertices []float32, vertexCount int) (bool, error) {
	if p.ended {
		return false, errPassEnded
	}
	if p.err != nil {
		return false, p.err
	}
	if p.prog == nil {
		return false, errNoProgram
	}
	if vertexCount < 0 || len(vertices) < vertexCount*p.prog.stride {
		return false, fmt.Errorf("wgpu: %d floats cannot hold %d vertices of stride %d",
			len(vertices), vertexCount, p.prog.stride)
	}
	if p.culled || vertexCount == 0 {
		return false, nil
	}
	group, err := p.bindGroup()
	if err != nil {
		return false, err
	}
	vbuf, err := p.buffer("gpucanvas_vertices", gputypes.BufferUsageVertex,
		float32Bytes(vertices[:vertexCount*p.prog.stride]))
	if err != nil {
		return false, err
	}
	p.rp.SetBindGroup(0, group, nil)
	p.rp.SetVertexBuffer(0, vbuf, 0)
	return true, nil
}

// Draw implements render.RenderPass.
func (p *pass) Draw(vertices []float32, vertexCount int) error {
	ok, err := p.prepare(vertices, vertexCount)
	if err != nil || !ok {
		return err
	}
	p.rp.Draw(uint32(vertexCount), 1, 0, 0)
	return nil
}

// DrawIndexed implements render.RenderPass.
func (p *pass) DrawIndexed(vertices []float32, indices []uint16) error {
	if p.prog == nil {
		return errNoProgram
	}
	vertexCount := len(vertices) / max(p.prog.stride, 1)
	for _, i := range indices {
		if int(i) >= vertexCount {
			return fmt.Errorf("wgpu: index %d out of %d vertices", i, vertexCount)
		}
	}
	ok, err := p.prepare(vertices, vertexCount)
	if err != nil || !ok || len(indices) == 0 {
		return err
	}
	data := make([]byte, 2*len(indices))
	for i, v := range indices {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	ibuf, err := p.buffer("gpucanvas_indices", gputypes.BufferUsageIndex, data)
	if err != nil {
		return err
	}
	p.rp.SetIndexBuffer(ibuf, gputypes.IndexFormatUint16, 0)
	p.rp.DrawIndexed(uint32(len(indices)), 1, 0, 0, 0)
	return nil
}

// Clear implements render.RenderPass. It draws a quad with a replacing
// blend, then restores the bound program and scissor.
func (p *pass) Clear(rect image.Rectangle, c gpu.Color) error {
	if p.ended {
		return errPassEnded
	}
	bounds := gpu.Bounds(p.rt)
	if rect.Empty() {
		rect = bounds
	}
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return nil
	}

	fill := pipeline.New(processor.NewQuadPerEdgeAA(false),
		[]processor.Fragment{processor.NewConstColor(c, processor.InputIgnore)}, nil,
		blend.Resolve(blend.Src), nil, gpu.OutputSwizzle(p.rt.tex.format))
	prog, err := p.dev.clearProgram(fill)
	if err != nil {
		return err
	}

	savedProg, savedPipe, savedBindings := p.prog, p.pipe, p.bindings
	savedScissor := p.scissor
	if err := p.BindProgram(prog, fill); err != nil {
		return err
	}
	p.SetScissor(rect)

	// Back to logical coordinates for the vertex stage.
	r := geomRect(rect)
	if p.rt.tex.origin == gpu.OriginBottomLeft {
		h := float32(p.rt.tex.height)
		r[1], r[3] = h-r[3], h-r[1]
	}
	quad := make([]float32, 0, 6*8)
	for _, v := range [6][2]int{{0, 1}, {2, 1}, {0, 3}, {0, 3}, {2, 1}, {2, 3}} {
		x, y := r[v[0]], r[v[1]]
		quad = append(quad, x, y, x, y, 0, 0, 0, 0)
	}
	err = p.Draw(quad, 6)

	p.prog, p.pipe, p.bindings, p.group = savedProg, savedPipe, savedBindings, nil
	if savedProg != nil {
		rp, perr := savedProg.renderPipeline(p.rt)
		if perr != nil {
			return perr
		}
		p.rp.SetPipeline(rp)
		p.uniforms = packUniforms(savedPipe, newLayout(savedPipe), p.rt.tex.width, p.rt.tex.height, p.rt.tex.origin)
	}
	p.SetScissor(savedScissor)
	return err
}

// clearProgram returns the program shared by every clear of a format.
func (d *Device) clearProgram(p *pipeline.Pipeline) (*program, error) {
	key := p.Key()
	for prog := range d.programs {
		if prog.key == key {
			return prog, nil
		}
	}
	prog, err := d.CompileProgram(p)
	if err != nil {
		return nil, err
	}
	return prog.(*program), nil
}

// End implements render.RenderPass.
func (p *pass) End() error {
	if p.ended {
		return errPassEnded
	}
	p.ended = true
	p.rp.End()
	if _, err := p.dev.submit(p.enc, p.buffers, p.groups); err != nil {
		p.fail(err)
	}
	return p.err
}

// Err implements render.RenderPass.
func (p *pass) Err() error { return p.err }

func geomRect(r image.Rectangle) [4]float32 {
	return [4]float32{float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y)}
}

func float32Bytes(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}
