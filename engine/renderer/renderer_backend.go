package renderer

import (
	"context"
	"strings"

	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeAuto uses the first present mode the surface reports.
	PresentModeAuto PresentMode = iota

	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// String returns the configuration name of the present mode.
func (m PresentMode) String() string {
	switch m {
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return "auto"
	}
}

// ParsePresentMode resolves a configuration name ("auto", "vsync", "uncapped") to a PresentMode.
//
// Parameters:
//   - name: the present mode name, case-insensitive
//
// Returns:
//   - PresentMode: the matching mode
//   - bool: false if the name is unknown
func ParsePresentMode(name string) (PresentMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return PresentModeAuto, true
	case "vsync", "fifo":
		return PresentModeVSync, true
	case "uncapped", "immediate":
		return PresentModeUncapped, true
	default:
		return PresentModeAuto, false
	}
}

// wgpuPresentMode maps a PresentMode to the wgpu mode it requests. ok is false for PresentModeAuto.
func (m PresentMode) wgpuPresentMode() (wgpu.PresentMode, bool) {
	switch m {
	case PresentModeVSync:
		return wgpu.PresentModeFifo, true
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate, true
	default:
		return 0, false
	}
}

// RendererBackend is the GPU API surface the Renderer drives. The wgpu implementation owns
// the instance, adapter, device, queue and surface; tests substitute a recording fake.
//
// Frame methods must be called in the order BeginFrame, DrawCall..., EndFrame, Present.
type RendererBackend interface {
	// RequestDevice acquires an adapter compatible with the surface and a device with its queue.
	//
	// Parameters:
	//   - ctx: bounds the acquisition
	//
	// Returns:
	//   - error: an error wrapping ErrNoAdapter or ErrNoDevice
	RequestDevice(ctx context.Context) error

	// SurfaceCapabilities returns the formats, present modes and alpha modes the surface supports with the acquired adapter.
	//
	// Returns:
	//   - wgpu.SurfaceCapabilities: the capabilities
	SurfaceCapabilities() wgpu.SurfaceCapabilities

	// MaxTextureDimension returns the device's 2D texture size limit.
	//
	// Returns:
	//   - uint32: the limit in pixels
	MaxTextureDimension() uint32

	// ConfigureSurface (re)configures the surface. Called on init and on every resize.
	//
	// Parameters:
	//   - config: the full surface configuration
	ConfigureSurface(config wgpu.SurfaceConfiguration)

	// RegisterRenderPipeline creates the shader module, bind group layouts, pipeline layout and
	// render pipeline for p and stores the GPU objects on it.
	//
	// Parameters:
	//   - p: the pipeline holding the shader and fixed-function state
	//   - format: the color target format
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline, format wgpu.TextureFormat) error

	// InitTextureView uploads staging data to a new RGBA8 sRGB texture and stores the texture and its view on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the texture on
	//   - binding: the binding index of the texture
	//   - stagingData: the pixel data and dimensions
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the sampler on
	//   - binding: the binding index of the sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// InitBindGroup creates the buffers missing on the provider and the bind group described by descriptor.
	// Textures and samplers must already be initialized.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffers and bind group on
	//   - descriptor: the layout descriptor of the group
	//   - bufferSizeOverrides: buffer sizes to use instead of MinBindingSize, keyed by binding (nil safe)
	//
	// Returns:
	//   - error: an error if a resource is missing or could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: the writes to submit
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture, creates a command encoder and begins a
	// render pass clearing to the given color.
	//
	// Parameters:
	//   - clear: the clear color
	//
	// Returns:
	//   - error: the acquisition error, classified into the surface error sentinels where possible
	BeginFrame(clear wgpu.Color) error

	// DrawCall encodes a non-indexed draw without vertex buffers in the current render pass.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - vertexCount: vertices to draw
	//   - instanceCount: instances to draw
	//   - bindGroups: providers bound at group 0, 1, ... in order
	DrawCall(p pipeline.Pipeline, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the render pass and submits the command buffer.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired swapchain texture and releases the frame's references.
	Present()

	// Release releases the surface, queue, device, adapter and instance in that order.
	Release()
}
