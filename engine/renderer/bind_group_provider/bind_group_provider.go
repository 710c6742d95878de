package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label, prefixed to every GPU object created for this provider.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed.
	// They are populated by the renderer backend during initialization, not by user-creation.

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textures holds the GPU textures backing textureViews, keyed by binding index.
	textures map[int]*wgpu.Texture
	// textureViews holds the GPU texture views created for this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers created for this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler
}

// BindGroupProvider holds the GPU resources behind one bind group: the buffers, textures,
// texture views and samplers keyed by binding index, and the bind group built from them.
//
// Usage pattern:
//  1. The renderer creates a provider for a @group(N) of its pipeline's shader
//  2. The backend fills textures and samplers via InitTextureView / InitSampler
//  3. The backend creates the buffers and the bind group via InitBindGroup
//  4. Per frame, BufferWrite values targeting the provider update uniform data
//  5. DrawCall binds BindGroup() at its group index
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider, the bind group first.
	// The provider may be initialized again afterwards.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created against.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the GPU buffer for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// Ready reports whether the bind group has been created.
	//
	// Returns:
	//   - bool: true once SetBindGroup received a non-nil bind group
	Ready() bool

	// SetBindGroup sets the bind group.
	//
	// Parameters:
	//   - bg: the bind group to set
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout. The provider does not own the layout;
	// it belongs to the pipeline it was created for and is not released by Release.
	//
	// Parameters:
	//   - bgl: the bind group layout to set
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer sets the buffer for a binding, releasing any buffer it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to set
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture sets the texture and its view for a binding, releasing any pair it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture backing the view
	//   - tv: the texture view to bind
	SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView)

	// SetSampler sets the sampler for a binding, releasing any sampler it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to set
	SetSampler(binding int, s *wgpu.Sampler)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the given label.
//
// Parameters:
//   - label: the debug label for this provider
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Ready() bool {
	return p.bindGroup != nil
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if existing := p.buffers[binding]; existing != nil && existing != buf {
		existing.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) {
	if existing := p.textureViews[binding]; existing != nil && existing != tv {
		existing.Release()
	}
	if existing := p.textures[binding]; existing != nil && existing != tex {
		existing.Release()
	}
	p.textures[binding] = tex
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if existing := p.samplers[binding]; existing != nil && existing != s {
		existing.Release()
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.bindGroupLayout = nil

	for binding, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, binding)
	}
	for binding, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
		}
		delete(p.textureViews, binding)
	}
	for binding, tex := range p.textures {
		if tex != nil {
			tex.Release()
		}
		delete(p.textures, binding)
	}
	for binding, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, binding)
	}
}
