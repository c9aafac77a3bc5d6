package ops

import (
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/internal/logging"
	"github.com/gogpu/gpucanvas/processor"
)

// OpsTask is the deferred command list of one render target. It executes
// at most once.
type OpsTask struct {
	target   gpu.RenderTarget
	ops      []Op
	executed bool
}

// NewOpsTask returns an empty task drawing into target.
func NewOpsTask(target gpu.RenderTarget) *OpsTask {
	return &OpsTask{target: target}
}

// Target returns the render target.
func (t *OpsTask) Target() gpu.RenderTarget { return t.target }

// Ops returns the recorded ops.
func (t *OpsTask) Ops() []Op { return t.ops }

// Len returns the number of recorded ops.
func (t *OpsTask) Len() int { return len(t.ops) }

// Executed reports whether Execute has run.
func (t *OpsTask) Executed() bool { return t.executed }

// AddOp records op, merging it into the last op when possible. A clear of
// the whole target discards everything recorded before it. Ops added
// after execution are ignored.
func (t *OpsTask) AddOp(op Op) {
	if t.executed || op == nil {
		return
	}
	if c, ok := op.(*ClearOp); ok && c.IsFullTarget(t.target) {
		if len(t.ops) > 0 {
			logging.Logger().Debug("full clear drops ops", "dropped", len(t.ops))
		}
		t.ops = t.ops[:0]
	}
	if n := len(t.ops); n > 0 && CombineIfPossible(t.ops[n-1], op) {
		logging.Logger().Debug("ops combined", "kind", op.ClassID().String())
		return
	}
	t.ops = append(t.ops, op)
}

// GatherTextures returns every texture the ops will sample, in op order.
func (t *OpsTask) GatherTextures() []gpu.Texture {
	var out []gpu.Texture
	seen := make(map[uint64]bool)
	for _, op := range t.ops {
		d, ok := op.(drawer)
		if !ok {
			continue
		}
		do := d.drawOp()
		fps := make([]processor.Fragment, 0, len(do.colors)+len(do.masks))
		fps = append(append(fps, do.colors...), do.masks...)
		for _, s := range processor.Samplers(fps...) {
			if s.Texture != nil && !seen[s.Texture.ID()] {
				seen[s.Texture.ID()] = true
				out = append(out, s.Texture)
			}
		}
	}
	return out
}

// Execute replays the ops on fs.Device and reports whether any work ran.
// Backend failures abandon the failing op only and are logged.
func (t *OpsTask) Execute(fs *FlushState) bool {
	if t.executed {
		return false
	}
	t.executed = true
	if len(t.ops) == 0 {
		return false
	}
	fs.target = t.target
	defer fs.releaseTransient()
	if fs.Programs != nil {
		// Programs evicted mid-task stay alive until the pass has ended.
		defer fs.Programs.Hold()()
	}
	log := logging.Logger()

	for _, op := range t.ops {
		if err := op.prepare(fs); err != nil {
			log.Warn("op prepare failed", "kind", op.ClassID().String(), "err", err)
		}
	}

	ps, err := fs.begin()
	if err != nil {
		log.Warn("render pass failed", "err", err)
		t.ops = nil
		return false
	}
	for _, op := range t.ops {
		if d, ok := op.(drawer); ok && d.drawOp().needsDstTexture(fs) {
			ps = t.snapshotDst(fs, ps, d.drawOp())
			if ps == nil {
				break
			}
		}
		if err := op.execute(fs, ps); err != nil {
			log.Warn("op failed", "kind", op.ClassID().String(), "err", err)
		}
	}
	if ps != nil {
		if err := ps.pass.End(); err != nil {
			log.Warn("render pass end failed", "err", err)
		}
	}
	if tex := t.target.Texture(); tex != nil && tex.Mipmapped() {
		if err := fs.Device.RegenerateMipmaps(tex); err != nil {
			log.Warn("mipmap regeneration failed", "err", err)
		}
	}
	t.ops = nil
	return true
}

// snapshotDst ends the current pass, copies the destination under d and
// reopens the pass. It returns nil when the pass cannot be reopened.
func (t *OpsTask) snapshotDst(fs *FlushState, ps *passState, d *DrawOp) *passState {
	log := logging.Logger()
	if err := ps.pass.End(); err != nil {
		log.Warn("render pass end failed", "err", err)
	}
	dst, err := fs.copyDst(d.bounds, d.scissor)
	if err != nil {
		log.Warn("destination copy failed", "err", err)
	}
	d.dst = dst
	next, err := fs.begin()
	if err != nil {
		log.Warn("render pass failed", "err", err)
		return nil
	}
	return next
}
