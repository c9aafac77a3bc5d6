package wgpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/internal/logging"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/render"
)

// ErrNeedsDstCopy is returned when a custom blend pipeline has no
// destination copy.
var ErrNeedsDstCopy = errors.New("wgpu: custom blend without destination copy")

// targetConfig selects one render pipeline of a program.
type targetConfig struct {
	format  gputypes.TextureFormat
	samples int
}

// program holds the shader module and layouts of one pipeline key. Render
// pipelines are created per target format and sample count on first use.
type program struct {
	dev      *Device
	key      string
	numSlots int
	numUnits int
	stride   int

	attributes []gputypes.VertexAttribute
	blend      gputypes.BlendState

	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[targetConfig]hal.RenderPipeline

	released bool
}

// CompileProgram implements render.Device.
func (d *Device) CompileProgram(p *pipeline.Pipeline) (render.Program, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	var state gputypes.BlendState
	switch desc := p.Blend().(type) {
	case blend.CoefficientPair:
		state = desc.BlendState()
	case blend.CustomEquation:
		if p.DstTexture() == nil {
			return nil, fmt.Errorf("%w: %s", ErrNeedsDstCopy, desc.Mode)
		}
		// The shader blends with the copy and writes the result.
		state = blend.CoefficientPair{Src: gputypes.BlendFactorOne, Dst: gputypes.BlendFactorZero}.BlendState()
	}

	l := newLayout(p)
	code, err := compileSPIRV(generateWGSL(p, l))
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	prog := &program{
		dev:        d,
		key:        p.Key(),
		numSlots:   l.numSlots,
		numUnits:   l.numUnits,
		stride:     processor.VertexStride(p.Geometry()),
		attributes: vertexAttributes(p.Geometry()),
		blend:      state,
		pipelines:  make(map[targetConfig]hal.RenderPipeline),
	}
	if err := prog.create(code); err != nil {
		prog.destroy()
		return nil, err
	}
	d.programs[prog] = struct{}{}
	logging.Logger().Debug("wgpu program compiled",
		"geometry", p.Geometry().ClassID(),
		"fragments", len(p.Fragments()),
		"textures", l.numUnits)
	return prog, nil
}

func (p *program) create(code []uint32) error {
	dev := p.dev.device
	var err error
	p.module, err = dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "gpucanvas_program",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}

	stages := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: stages,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for unit := 0; unit < p.numUnits; unit++ {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(textureBinding(unit)),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(samplerBinding(unit)),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
	}
	p.bindLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "gpucanvas_program_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	p.pipeLayout, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gpucanvas_program_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	return nil
}

// renderPipeline returns the pipeline for rt, creating it on first use.
func (p *program) renderPipeline(rt *renderTarget) (hal.RenderPipeline, error) {
	format, _ := halFormat(rt.tex.format)
	cfg := targetConfig{format: format, samples: rt.samples}
	if rp, ok := p.pipelines[cfg]; ok {
		return rp, nil
	}
	state := p.blend
	rp, err := p.dev.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "gpucanvas_program_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: vertexEntry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: uint64(p.stride * 4),
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  p.attributes,
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				Blend:     &state,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Multisample: gputypes.MultisampleState{
			Count: uint32(rt.samples),
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	p.pipelines[cfg] = rp
	return rp, nil
}

// Release implements render.Program.
func (p *program) Release() {
	if p.released || p.dev.released {
		return
	}
	delete(p.dev.programs, p)
	p.destroy()
}

func (p *program) destroy() {
	if p.released {
		return
	}
	p.released = true
	// Submitted passes may still reference the pipelines.
	_ = p.dev.wait(context.Background(), p.dev.fenceValue)
	dev := p.dev.device
	for _, rp := range p.pipelines {
		dev.DestroyRenderPipeline(rp)
	}
	if p.pipeLayout != nil {
		dev.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		dev.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.module != nil {
		dev.DestroyShaderModule(p.module)
	}
}

// vertexAttributes returns the hal vertex layout of gp. Locations follow
// attribute order.
func vertexAttributes(gp processor.Geometry) []gputypes.VertexAttribute {
	var out []gputypes.VertexAttribute
	offset := 0
	for i, a := range gp.Attributes() {
		format := gputypes.VertexFormatFloat32x4
		switch a.Components {
		case 1:
			format = gputypes.VertexFormatFloat32
		case 2:
			format = gputypes.VertexFormatFloat32x2
		case 3:
			format = gputypes.VertexFormatFloat32x3
		}
		out = append(out, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(offset),
			ShaderLocation: uint32(i),
		})
		offset += 4 * a.Components
	}
	return out
}
