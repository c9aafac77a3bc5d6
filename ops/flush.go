package ops

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/internal/logging"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/program"
	"github.com/gogpu/gpucanvas/render"
)

// FlushState carries what ops need while executing.
type FlushState struct {
	Device   render.Device
	Programs *program.Cache

	// DebugChecks makes every state change check the pass for backend
	// errors and log them.
	DebugChecks bool

	target    gpu.RenderTarget
	transient []gpu.Texture
}

// passState wraps the open render pass of an executing task.
type passState struct {
	fs   *FlushState
	pass render.RenderPass
}

func (ps *passState) check(what string) {
	if !ps.fs.DebugChecks {
		return
	}
	if err := ps.pass.Err(); err != nil {
		logging.Logger().Warn("backend error", "after", what, "err", err)
	}
}

// begin opens a pass on the task target.
func (fs *FlushState) begin() (*passState, error) {
	pass, err := fs.Device.BeginRenderPass(fs.target)
	if err != nil {
		return nil, fmt.Errorf("ops: begin render pass: %w", err)
	}
	ps := &passState{fs: fs, pass: pass}
	pass.SetViewport(fs.target.Width(), fs.target.Height())
	ps.check("SetViewport")
	return ps, nil
}

// storageRect converts logical device bounds to target storage pixels.
func (fs *FlushState) storageRect(bounds geom.Rect) image.Rectangle {
	if fs.target.Origin() == gpu.OriginBottomLeft {
		bounds = bounds.FlipY(float64(fs.target.Height()))
	}
	r := bounds.RoundOut().ImageRect()
	return r.Intersect(gpu.Bounds(fs.target))
}

// copyDst snapshots the destination under bounds for a custom blend.
func (fs *FlushState) copyDst(bounds geom.Rect, scissor image.Rectangle) (*pipeline.DstTexture, error) {
	r := fs.storageRect(bounds)
	if !scissor.Empty() {
		r = r.Intersect(scissor)
	}
	if r.Empty() {
		return nil, nil
	}
	tex, err := fs.Device.CreateTexture(gpu.TextureDescriptor{
		Label:  "dst-copy",
		Width:  r.Dx(),
		Height: r.Dy(),
		Format: fs.target.Format(),
		Origin: fs.target.Origin(),
	})
	if err != nil {
		return nil, fmt.Errorf("ops: dst copy texture: %w", err)
	}
	fs.transient = append(fs.transient, tex)
	if err := fs.Device.CopyToTexture(tex, fs.target, r); err != nil {
		return nil, fmt.Errorf("ops: dst copy: %w", err)
	}
	return &pipeline.DstTexture{Texture: tex, Offset: r.Min}, nil
}

func (fs *FlushState) releaseTransient() {
	for _, tex := range fs.transient {
		fs.Device.ReleaseTexture(tex)
	}
	fs.transient = fs.transient[:0]
}

// mesh is prepared vertex data for one draw.
type mesh struct {
	vertices []float32
	indices  []uint16
	count    int
}

// draw runs the shared DrawOp sequence: build the pipeline, look up the
// program, bind textures and state, then draw.
func (d *DrawOp) draw(ps *passState, gp processor.Geometry, m mesh) error {
	if m.count == 0 && len(m.indices) == 0 {
		return nil
	}
	fs := ps.fs
	desc := blend.Resolve(d.blendMode)
	p := pipeline.New(gp, d.colors, d.masks, desc, d.dst, gpu.OutputSwizzle(fs.target.Format()))
	prog, err := fs.Programs.Program(p)
	if err != nil {
		return err
	}
	if err := ps.pass.BindProgram(prog, p); err != nil {
		return fmt.Errorf("ops: bind program: %w", err)
	}
	ps.check("BindProgram")
	for unit, s := range p.Samplers() {
		ps.pass.BindTexture(unit, s.Texture, s.State)
	}
	ps.check("BindTexture")
	ps.pass.SetScissor(d.scissor)
	ps.check("SetScissor")
	ps.pass.SetBlend(desc)
	ps.check("SetBlend")
	if len(m.indices) > 0 {
		err = ps.pass.DrawIndexed(m.vertices, m.indices)
	} else {
		err = ps.pass.Draw(m.vertices, m.count)
	}
	if err != nil {
		return fmt.Errorf("ops: draw: %w", err)
	}
	ps.check("Draw")
	return nil
}

// vertexWriter appends interleaved float32 attributes.
type vertexWriter struct {
	data []float32
}

func (w *vertexWriter) point(p geom.Point) {
	w.data = append(w.data, float32(p.X), float32(p.Y))
}

func (w *vertexWriter) color(c gpu.Color) {
	w.data = append(w.data, c.R, c.G, c.B, c.A)
}

func (w *vertexWriter) float(v float64) {
	w.data = append(w.data, float32(v))
}

// localOf maps a device position back to local coordinates.
func localOf(inverse geom.Matrix, ok bool, device geom.Point) geom.Point {
	if !ok {
		return device
	}
	return inverse.TransformPoint(device)
}
