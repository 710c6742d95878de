package renderer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// wgpuRendererBackendImpl is the WebGPU implementation of RendererBackend.
// Field order follows the ownership hierarchy; Release walks it backwards.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	forceFallbackAdapter bool
	limits               wgpu.Limits

	// layouts holds bind group layouts created by InitBindGroup for providers without one.
	layouts []*wgpu.BindGroupLayout

	// Frame state between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the wgpu instance and the window surface. The adapter and
// device are acquired later by RequestDevice. The calling goroutine is locked to its OS thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - forceFallbackAdapter: true to request the software fallback adapter
//   - logger: the logger for device events
//
// Returns:
//   - RendererBackend: the backend
//   - error: an error if no surface descriptor was provided
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, logger *zap.Logger) (RendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("renderer: no surface descriptor: %w", ErrNoAdapter)
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:                   &sync.Mutex{},
		logger:               logger,
		instance:             wgpu.CreateInstance(nil),
		forceFallbackAdapter: forceFallbackAdapter,
		limits:               wgpu.DefaultLimits(),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)
	return b, nil
}

func (b *wgpuRendererBackendImpl) RequestDevice(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("renderer: %w: %v", ErrNoAdapter, err)
	}
	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("renderer: %w: %v", ErrNoAdapter, err)
	}
	b.adapter = a

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("renderer: %w: %v", ErrNoDevice, err)
	}
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Panorama Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: b.limits,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: %w: %v", ErrNoDevice, err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.logger.Debug("GPU device acquired", zap.Bool("fallback_adapter", b.forceFallbackAdapter))
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceCapabilities() wgpu.SurfaceCapabilities {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.GetCapabilities(b.adapter)
}

func (b *wgpuRendererBackendImpl) MaxTextureDimension() uint32 {
	return b.limits.MaxTextureDimension2D
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(config wgpu.SurfaceConfiguration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.Configure(b.adapter, b.device, &config)
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline, format wgpu.TextureFormat) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := p.Shader()
	if s == nil {
		return errors.New("a shader must be set to create a render pipeline")
	}

	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return err
	}
	defer module.Release()

	descriptors := s.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range bindGroupLayouts {
		desc := descriptors[g]
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			releaseLayouts(bindGroupLayouts)
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		releaseLayouts(bindGroupLayouts)
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(p.Descriptor(module, pipelineLayout, format))
	if err != nil {
		releaseLayouts(bindGroupLayouts)
		return err
	}

	p.SetBindGroupLayouts(bindGroupLayouts)
	p.SetRenderPipeline(created)
	return nil
}

func releaseLayouts(layouts []*wgpu.BindGroupLayout) {
	for _, layout := range layouts {
		if layout != nil {
			layout.Release()
		}
	}
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !stagingData.Valid() {
		return fmt.Errorf("texture staging data for binding %d is %dx%d with %d bytes", binding, stagingData.Width, stagingData.Height, len(stagingData.Pixels))
	}

	size := wgpu.Extent3D{
		Width:              stagingData.Width,
		Height:             stagingData.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetTexture(binding, tex, view)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
	})
	if err != nil {
		return err
	}
	provider.SetSampler(binding, samp)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		b.layouts = append(b.layouts, layout)
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view, call InitTextureView first", binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}

		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("sampler binding %d has no sampler, call InitSampler first", binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}

		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
					usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				}
				size := entry.Buffer.MinBindingSize
				if override, ok := bufferSizeOverrides[binding]; ok {
					size = override
				}
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear wgpu.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A surface image still held from the previous frame would make wgpu-native reject the acquisition.
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return classifySurfaceError(err)
	}
	// Reconfiguring recovers both a lost and an outdated surface.
	if !surfaceTextureAcquired(surfaceTexture) {
		return fmt.Errorf("%w: no surface texture acquired", ErrSurfaceLost)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.framePass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no frame in progress")
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

// releaseFrameSurface drops the frame's swapchain texture and view. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()
	releaseLayouts(b.layouts)
	b.layouts = nil

	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	runtime.UnlockOSThread()
}

// surfaceTextureAcquired reports whether GetCurrentTexture handed back a live texture.
// The binding discards the acquisition status, so a lost or outdated surface only shows up as a
// texture with an empty native handle, which must never reach CreateView.
func surfaceTextureAcquired(t *wgpu.Texture) bool {
	if t == nil {
		return false
	}
	ref := reflect.ValueOf(t).Elem().FieldByName("ref")
	if !ref.IsValid() || ref.Kind() != reflect.Pointer {
		return true
	}
	return !ref.IsNil()
}
