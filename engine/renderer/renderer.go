package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Renderer.
type State int

const (
	// StateUninitialized is the state before Init.
	StateUninitialized State = iota

	// StateReady means a frame can be rendered.
	StateReady

	// StateRendering is held for the duration of a Render call.
	StateRendering

	// StateLost means the surface must be reconfigured with Resize before the next frame.
	StateLost

	// StateFatal means initialization failed or the device ran out of memory. Render returns ErrNotReady.
	StateFatal

	// StateReleased is the state after Release.
	StateReleased
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRendering:
		return "rendering"
	case StateLost:
		return "lost"
	case StateFatal:
		return "fatal"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// opaqueBlend writes the panorama colour over the clear colour unchanged.
var opaqueBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
	},
}

const (
	// DefaultMaxTextureSize is the WebGPU default maxTextureDimension2D limit.
	DefaultMaxTextureSize = 8192

	// gridPanoramaWidth is the width of the generated panorama used when no image is configured.
	gridPanoramaWidth = 2048

	// cameraGroup is the bind group index of the camera, panorama and sampler bindings.
	cameraGroup = 0
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backend           RendererBackend
	surfaceDescriptor *wgpu.SurfaceDescriptor

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
	projection           camera.Projection
	panorama             common.PanoramaSource
	maxTextureSize       uint32
	shaderValidation     bool

	decodePool worker.DynamicWorkerPool

	state  State
	config wgpu.SurfaceConfiguration

	// The following are created by Init and released in reverse order by Release.

	pipeline      pipeline.Pipeline
	cameraBinding bind_group_provider.BindGroupProvider

	// cameraData holds the last marshalled camera uniform, uploaded again after Init.
	cameraData []byte
}

// Renderer draws one equirectangular panorama to a window surface through a camera uniform.
//
// Lifecycle: NewRenderer → Init → (Resize | WriteCamera | Render)* → Release. Every frame is a
// single render pass with one full-screen triangle draw. Render reports surface problems as
// ErrSurfaceLost (call Resize), ErrSurfaceOutdated / ErrSurfaceTimeout (skip the frame) or
// ErrSurfaceOutOfMemory (fatal).
type Renderer interface {
	// Init acquires the GPU device, configures the surface, builds the panorama pipeline and
	// uploads the panorama texture. The panorama is decoded on a worker while the device is requested.
	//
	// Parameters:
	//   - ctx: bounds the device acquisition
	//   - width: the initial surface width in pixels (clamped to at least 1)
	//   - height: the initial surface height in pixels (clamped to at least 1)
	//
	// Returns:
	//   - error: an error wrapping ErrNoAdapter, ErrNoDevice, ErrShaderCompile, ErrPipeline or
	//     ErrAlreadyInitialized. The renderer is left in StateFatal unless the error is ErrAlreadyInitialized.
	Init(ctx context.Context, width, height int) error

	// Resize reconfigures the surface for a new size. A zero or negative dimension is ignored.
	// A successful resize moves StateLost back to StateReady. Calling it twice with the same size
	// yields the same configuration.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// WriteCamera stages the uniform bytes and uploads them to the camera buffer. Before Init the
	// bytes are kept and uploaded once the buffer exists.
	//
	// Parameters:
	//   - u: the camera uniform; its projection must match the renderer's
	//
	// Returns:
	//   - error: an error if the uniform's projection does not match
	WriteCamera(u camera.Uniform) error

	// Render acquires the next swapchain texture, draws the panorama and presents it.
	//
	// Returns:
	//   - error: nil, a surface error sentinel (wrapped), or ErrNotReady
	Render() error

	// Size returns the configured surface size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Config returns a copy of the current surface configuration.
	//
	// Returns:
	//   - wgpu.SurfaceConfiguration: the configuration last passed to the backend
	Config() wgpu.SurfaceConfiguration

	// State returns the lifecycle state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Projection returns the camera projection the pipeline was built for.
	//
	// Returns:
	//   - camera.Projection: the projection
	Projection() camera.Projection

	// Release releases the bind group resources, the pipeline and the backend, in that order.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. Without WithBackend, Init creates the wgpu backend from the
// surface descriptor passed with WithSurfaceDescriptor.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the uninitialized renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:               &sync.Mutex{},
		logger:           zap.NewNop(),
		clearColor:       wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
		projection:       camera.ProjectionSpherical,
		maxTextureSize:   DefaultMaxTextureSize,
		shaderValidation: true,
		decodePool:       worker.NewDynamicWorkerPool(1, 4, 1*time.Second),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Init(ctx context.Context, width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateUninitialized {
		return fmt.Errorf("renderer: init in state %s: %w", r.state, ErrAlreadyInitialized)
	}
	if err := r.init(ctx, max(width, 1), max(height, 1)); err != nil {
		r.state = StateFatal
		r.logger.Error("renderer init failed", zap.Error(err))
		return err
	}
	r.state = StateReady
	r.logger.Info("renderer initialized",
		zap.Int("width", int(r.config.Width)),
		zap.Int("height", int(r.config.Height)),
		zap.Any("format", r.config.Format),
		zap.Any("present_mode", r.config.PresentMode),
		zap.String("projection", r.projection.String()),
	)
	return nil
}

func (r *renderer) init(ctx context.Context, width, height int) error {
	if r.backend == nil {
		backend, err := newWGPURendererBackend(r.surfaceDescriptor, r.forceFallbackAdapter, r.logger)
		if err != nil {
			return err
		}
		r.backend = backend
	}

	// Decode the panorama while the device is acquired.
	var wg sync.WaitGroup
	var staging common.TextureStagingData
	var decodeErr error
	wg.Add(1)
	r.decodePool.SubmitTask(worker.Task{
		ID: 0,
		Do: func() (any, error) {
			defer wg.Done()
			staging, decodeErr = r.decodePanorama(r.maxTextureSize)
			return nil, decodeErr
		},
	})

	deviceErr := r.backend.RequestDevice(ctx)
	wg.Wait()
	if deviceErr != nil {
		return deviceErr
	}
	if decodeErr != nil {
		return fmt.Errorf("renderer: %w", decodeErr)
	}

	if limit := r.backend.MaxTextureDimension(); limit > 0 && (staging.Width > limit || staging.Height > limit) {
		var err error
		if staging, err = r.decodePanorama(limit); err != nil {
			return fmt.Errorf("renderer: %w", err)
		}
	}

	caps := r.backend.SurfaceCapabilities()
	if len(caps.Formats) == 0 {
		return fmt.Errorf("renderer: surface reports no formats: %w", ErrNoAdapter)
	}
	r.config = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      preferredSurfaceFormat(caps.Formats),
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.choosePresentMode(caps.PresentModes),
		AlphaMode:   common.FirstOr(caps.AlphaModes, wgpu.CompositeAlphaModeAuto),
	}
	r.backend.ConfigureSurface(r.config)

	s, err := shader.NewPanoramaShader(r.projection, shader.WithValidation(r.shaderValidation))
	if err != nil {
		return fmt.Errorf("renderer: %w: %v", ErrShaderCompile, err)
	}

	p := pipeline.NewPipeline(s.Key(),
		pipeline.WithShader(s),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskAll),
		pipeline.WithBlendState(&opaqueBlend),
		pipeline.WithSampleCount(1),
	)
	if err := r.backend.RegisterRenderPipeline(p, r.config.Format); err != nil {
		return fmt.Errorf("renderer: %w: %v", ErrPipeline, err)
	}
	r.pipeline = p

	uniform := camera.NewUniform(r.projection)
	provider := bind_group_provider.NewBindGroupProvider(s.Key()+" camera",
		bind_group_provider.WithBindGroupLayout(p.BindGroupLayout(cameraGroup)))
	r.cameraBinding = provider

	if err := r.backend.InitTextureView(provider, shader.BindingPanorama, staging); err != nil {
		return fmt.Errorf("renderer: panorama texture: %w: %v", ErrPipeline, err)
	}
	if err := r.backend.InitSampler(provider, shader.BindingSampler, common.PanoramaSampler()); err != nil {
		return fmt.Errorf("renderer: panorama sampler: %w: %v", ErrPipeline, err)
	}
	sizes := map[int]uint64{shader.BindingCamera: uint64(uniform.Size())}
	if err := r.backend.InitBindGroup(provider, s.BindGroupLayoutDescriptor(cameraGroup), sizes); err != nil {
		return fmt.Errorf("renderer: camera bind group: %w: %v", ErrPipeline, err)
	}

	if r.cameraData == nil {
		uniform.Update(camera.NewState(float32(width) / float32(height)))
		r.cameraData = uniform.Marshal()
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		bind_group_provider.NewBufferWrite(provider, shader.BindingCamera, r.cameraData),
	})
	return nil
}

// decodePanorama decodes the configured panorama, or generates the grid panorama when none is configured.
func (r *renderer) decodePanorama(maxSize uint32) (common.TextureStagingData, error) {
	if r.panorama.Path == "" && len(r.panorama.Data) == 0 {
		return common.GridPanorama(min(gridPanoramaWidth, maxSize)), nil
	}
	src := r.panorama
	if src.MaxSize == 0 || src.MaxSize > maxSize {
		src.MaxSize = maxSize
	}
	return src.Decode()
}

// choosePresentMode returns the requested present mode when the surface supports it, else the first supported mode.
func (r *renderer) choosePresentMode(supported []wgpu.PresentMode) wgpu.PresentMode {
	fallback := common.FirstOr(supported, wgpu.PresentModeFifo)
	want, ok := r.presentMode.wgpuPresentMode()
	if !ok {
		return fallback
	}
	for _, m := range supported {
		if m == want {
			return want
		}
	}
	r.logger.Warn("present mode not supported by surface, using default",
		zap.String("requested", r.presentMode.String()),
		zap.Any("using", fallback),
	)
	return fallback
}

// preferredSurfaceFormat returns the first sRGB format, falling back to the first format.
func preferredSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.config.Width = uint32(width)
	r.config.Height = uint32(height)

	switch r.state {
	case StateReady, StateLost:
		r.backend.ConfigureSurface(r.config)
		if r.state == StateLost {
			r.logger.Info("surface recovered", zap.Int("width", width), zap.Int("height", height))
		}
		r.state = StateReady
	}
}

func (r *renderer) WriteCamera(u camera.Uniform) error {
	if u.Projection() != r.projection {
		return fmt.Errorf("renderer: camera uniform is %s, pipeline expects %s", u.Projection(), r.projection)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cameraData = u.Marshal()
	switch r.state {
	case StateReady, StateLost:
		r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
			bind_group_provider.NewBufferWrite(r.cameraBinding, shader.BindingCamera, r.cameraData),
		})
	}
	return nil
}

func (r *renderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateReady:
	case StateLost:
		return fmt.Errorf("renderer: %w: waiting for resize", ErrSurfaceLost)
	default:
		return fmt.Errorf("renderer: render in state %s: %w", r.state, ErrNotReady)
	}

	r.state = StateRendering
	if err := r.backend.BeginFrame(r.clearColor); err != nil {
		return r.frameFailed(err)
	}
	r.backend.DrawCall(r.pipeline, 3, 1, []bind_group_provider.BindGroupProvider{r.cameraBinding})
	if err := r.backend.EndFrame(); err != nil {
		return r.frameFailed(err)
	}
	r.backend.Present()
	r.state = StateReady
	return nil
}

// frameFailed moves the renderer to the state matching a frame error and returns the classified error.
func (r *renderer) frameFailed(err error) error {
	err = classifySurfaceError(err)
	switch {
	case errors.Is(err, ErrSurfaceLost):
		r.state = StateLost
	case IsTransient(err):
		r.state = StateReady
	default:
		r.state = StateFatal
	}
	return fmt.Errorf("renderer: frame: %w", err)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.config.Width), int(r.config.Height)
}

func (r *renderer) Config() wgpu.SurfaceConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

func (r *renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *renderer) Projection() camera.Projection {
	return r.projection
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateReleased {
		return
	}
	if r.cameraBinding != nil {
		r.cameraBinding.Release()
		r.cameraBinding = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.backend != nil {
		r.backend.Release()
	}
	r.decodePool.Stop()
	r.state = StateReleased
}
