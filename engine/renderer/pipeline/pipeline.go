package pipeline

import (
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render pipeline configuration and the GPU objects created from it by a backend.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as the GPU object label
	pipelineKey string

	// shader is the WGSL program holding both the vertex and fragment stages; required before registration
	shader shader.Shader

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	// The following properties configure the pipeline during creation and can be set with the builder options.

	cullMode    wgpu.CullMode
	topology    wgpu.PrimitiveTopology
	frontFace   wgpu.FrontFace
	writeMask   wgpu.ColorWriteMask
	blendState  *wgpu.BlendState
	sampleCount uint32
}

// Pipeline defines the interface for a vertex-buffer-free render pipeline. It carries the
// shader and fixed-function state needed to build a wgpu.RenderPipelineDescriptor, and holds
// the created pipeline and bind group layouts once a backend registers it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the program both stages are taken from.
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if not set
	Shader() shader.Shader

	// RenderPipeline returns the GPU render pipeline, nil until registered.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayouts returns the GPU bind group layouts indexed by group, nil until registered.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: the layouts, one per group
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// BindGroupLayout returns the GPU layout of a single group.
	//
	// Parameters:
	//   - group: the @group(N) index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil if the group is out of range or not registered
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode (defaults to wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology (defaults to wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order (defaults to wgpu.FrontFaceCCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask (defaults to wgpu.ColorWriteMaskAll)
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil when the target is overwritten
	BlendState() *wgpu.BlendState

	// SampleCount returns the multisample count of the color target.
	//
	// Returns:
	//   - uint32: the sample count (defaults to 1)
	SampleCount() uint32

	// Descriptor builds the render pipeline descriptor for a compiled module and layout.
	// No vertex buffers are declared and no depth/stencil state is attached.
	//
	// Parameters:
	//   - module: the GPU shader module created from Shader().Module()
	//   - layout: the pipeline layout built from BindGroupLayouts
	//   - format: the color target format, i.e. the configured surface format
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for Device.CreateRenderPipeline
	Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetBindGroupLayouts sets the GPU bind group layouts
	//
	// Parameters:
	//   - layouts: the layouts, indexed by group
	SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout)

	// Release drops the GPU render pipeline and bind group layouts. The pipeline may be registered again afterwards.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		cullMode:    wgpu.CullModeBack,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	var vertexEntry, fragmentEntry string
	if p.shader != nil {
		vertexEntry = p.shader.EntryPoint(shader.ShaderTypeVertex)
		fragmentEntry = p.shader.EntryPoint(shader.ShaderTypeFragment)
	}

	return &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					Blend:     p.blendState,
					WriteMask: p.writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, layout := range p.bindGroupLayouts {
		if layout != nil {
			layout.Release()
		}
	}
	p.bindGroupLayouts = nil
}
