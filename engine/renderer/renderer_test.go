package renderer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type drawRecord struct {
	vertexCount, instanceCount uint32
	bindGroups                 int
}

// mockBackend records every call the renderer makes and returns queued errors.
type mockBackend struct {
	caps        wgpu.SurfaceCapabilities
	maxTexture  uint32
	requestErr  error
	registerErr error
	frameErrs   []error

	configs        []wgpu.SurfaceConfiguration
	registered     pipeline.Pipeline
	pipelineFormat wgpu.TextureFormat
	textures       []common.TextureStagingData
	samplers       int
	bufferSizes    map[int]uint64
	writes         [][]byte
	beginFrames    int
	draws          []drawRecord
	endFrames      int
	presents       int
	released       bool
}

var _ RendererBackend = &mockBackend{}

func newMockBackend() *mockBackend {
	return &mockBackend{
		caps: wgpu.SurfaceCapabilities{
			Formats:      []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb},
			PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate},
			AlphaModes:   []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
		},
		maxTexture: DefaultMaxTextureSize,
	}
}

func (m *mockBackend) RequestDevice(ctx context.Context) error { return m.requestErr }

func (m *mockBackend) SurfaceCapabilities() wgpu.SurfaceCapabilities { return m.caps }

func (m *mockBackend) MaxTextureDimension() uint32 { return m.maxTexture }

func (m *mockBackend) ConfigureSurface(config wgpu.SurfaceConfiguration) {
	m.configs = append(m.configs, config)
}

func (m *mockBackend) RegisterRenderPipeline(p pipeline.Pipeline, format wgpu.TextureFormat) error {
	m.registered = p
	m.pipelineFormat = format
	return m.registerErr
}

func (m *mockBackend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	m.textures = append(m.textures, stagingData)
	return nil
}

func (m *mockBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	m.samplers++
	return nil
}

func (m *mockBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	m.bufferSizes = bufferSizeOverrides
	return nil
}

func (m *mockBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		m.writes = append(m.writes, w.Data)
	}
}

func (m *mockBackend) BeginFrame(clear wgpu.Color) error {
	m.beginFrames++
	if len(m.frameErrs) > 0 {
		err := m.frameErrs[0]
		m.frameErrs = m.frameErrs[1:]
		return err
	}
	return nil
}

func (m *mockBackend) DrawCall(p pipeline.Pipeline, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	m.draws = append(m.draws, drawRecord{vertexCount, instanceCount, len(bindGroups)})
}

func (m *mockBackend) EndFrame() error {
	m.endFrames++
	return nil
}

func (m *mockBackend) Present() { m.presents++ }

func (m *mockBackend) Release() { m.released = true }

func newTestRenderer(t *testing.T, m *mockBackend, opts ...RendererBuilderOption) Renderer {
	t.Helper()
	opts = append([]RendererBuilderOption{WithBackend(m), WithShaderValidation(false)}, opts...)
	r := NewRenderer(opts...)
	if err := r.Init(context.Background(), 1280, 720); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func TestColdStartDrawsOnce(t *testing.T) {
	m := newMockBackend()
	r := newTestRenderer(t, m)

	if err := r.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []drawRecord{{vertexCount: 3, instanceCount: 1, bindGroups: 1}}
	if !reflect.DeepEqual(m.draws, want) {
		t.Errorf("draws = %+v, want %+v", m.draws, want)
	}
	if m.beginFrames != 1 || m.endFrames != 1 || m.presents != 1 {
		t.Errorf("frame calls begin=%d end=%d present=%d, want 1 each", m.beginFrames, m.endFrames, m.presents)
	}
	if r.State() != StateReady {
		t.Errorf("State = %s, want ready", r.State())
	}

	cfg := r.Config()
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("config size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.Usage != wgpu.TextureUsageRenderAttachment {
		t.Errorf("config usage = %v, want render attachment", cfg.Usage)
	}
	if cfg.PresentMode != wgpu.PresentModeFifo || cfg.AlphaMode != wgpu.CompositeAlphaModeOpaque {
		t.Errorf("config present/alpha = %v/%v, want first reported", cfg.PresentMode, cfg.AlphaMode)
	}
	if m.pipelineFormat != cfg.Format {
		t.Errorf("pipeline format %v differs from surface format %v", m.pipelineFormat, cfg.Format)
	}
}

func TestInitResources(t *testing.T) {
	tests := []struct {
		name       string
		projection camera.Projection
	}{
		{"spherical", camera.ProjectionSpherical},
		{"perspective", camera.ProjectionPerspective},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockBackend()
			r := newTestRenderer(t, m, WithProjection(tt.projection))

			size := camera.NewUniform(tt.projection).Size()
			if got := m.bufferSizes[shader.BindingCamera]; got != uint64(size) {
				t.Errorf("camera buffer size = %d, want %d", got, size)
			}
			if len(m.writes) != 1 || len(m.writes[0]) != size {
				t.Fatalf("initial camera writes = %d, want one of %d bytes", len(m.writes), size)
			}
			if len(m.textures) != 1 || !m.textures[0].Valid() || m.samplers != 1 {
				t.Errorf("textures = %d, samplers = %d, want 1 valid texture and 1 sampler", len(m.textures), m.samplers)
			}
			if r.Projection() != tt.projection {
				t.Errorf("Projection = %s, want %s", r.Projection(), tt.projection)
			}
		})
	}
}

func TestInitPipelineState(t *testing.T) {
	m := newMockBackend()
	newTestRenderer(t, m)

	p := m.registered
	if p == nil {
		t.Fatal("no pipeline registered")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.FrontFace() != wgpu.FrontFaceCCW || p.CullMode() != wgpu.CullModeBack {
		t.Errorf("primitive state = %v/%v/%v, want triangle list, ccw, back", p.Topology(), p.FrontFace(), p.CullMode())
	}
	if p.SampleCount() != 1 || p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("samples %d mask %v, want 1 and all", p.SampleCount(), p.WriteMask())
	}
	if b := p.BlendState(); b == nil || b.Color.DstFactor != wgpu.BlendFactorZero || b.Color.SrcFactor != wgpu.BlendFactorOne {
		t.Errorf("blend state = %+v, want opaque replace", b)
	}
	if p.Shader() == nil || p.Shader().Key() != "panorama_spherical" {
		t.Error("pipeline not built from the spherical panorama shader")
	}
}

func TestInitDownscalesToDeviceLimit(t *testing.T) {
	m := newMockBackend()
	m.maxTexture = 512
	newTestRenderer(t, m)

	tex := m.textures[0]
	if tex.Width != 512 || tex.Height != 256 {
		t.Errorf("texture = %dx%d, want 512x256", tex.Width, tex.Height)
	}
}

func TestSurfaceFormatPreference(t *testing.T) {
	tests := []struct {
		name    string
		formats []wgpu.TextureFormat
		want    wgpu.TextureFormat
	}{
		{"srgb after linear", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb}, wgpu.TextureFormatBGRA8UnormSrgb},
		{"rgba srgb", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb}, wgpu.TextureFormatRGBA8UnormSrgb},
		{"no srgb falls back to first", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatRGBA16Float},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockBackend()
			m.caps.Formats = tt.formats
			r := newTestRenderer(t, m)
			if got := r.Config().Format; got != tt.want {
				t.Errorf("Format = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPresentModeSelection(t *testing.T) {
	tests := []struct {
		name      string
		mode      PresentMode
		supported []wgpu.PresentMode
		want      wgpu.PresentMode
	}{
		{"auto uses first", PresentModeAuto, []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeFifo}, wgpu.PresentModeImmediate},
		{"uncapped supported", PresentModeUncapped, []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate}, wgpu.PresentModeImmediate},
		{"uncapped unsupported", PresentModeUncapped, []wgpu.PresentMode{wgpu.PresentModeFifo}, wgpu.PresentModeFifo},
		{"vsync", PresentModeVSync, []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeFifo}, wgpu.PresentModeFifo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockBackend()
			m.caps.PresentModes = tt.supported
			r := newTestRenderer(t, m, WithPresentMode(tt.mode))
			if got := r.Config().PresentMode; got != tt.want {
				t.Errorf("PresentMode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResizeIgnoresDegenerateSize(t *testing.T) {
	m := newMockBackend()
	r := newTestRenderer(t, m)
	configured := len(m.configs)

	for _, size := range [][2]int{{0, 720}, {1280, 0}, {0, 0}, {-5, 10}} {
		r.Resize(size[0], size[1])
	}

	if len(m.configs) != configured {
		t.Errorf("degenerate resizes reconfigured the surface %d times", len(m.configs)-configured)
	}
	if w, h := r.Size(); w != 1280 || h != 720 {
		t.Errorf("Size = %dx%d, want 1280x720", w, h)
	}
}

func TestResizeIdempotent(t *testing.T) {
	m := newMockBackend()
	r := newTestRenderer(t, m)

	r.Resize(800, 600)
	first := r.Config()
	r.Resize(800, 600)
	second := r.Config()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("configs differ: %+v vs %+v", first, second)
	}
	n := len(m.configs)
	if !reflect.DeepEqual(m.configs[n-1], m.configs[n-2]) {
		t.Error("backend received different configurations for the same size")
	}
	if first.Width != 800 || first.Height != 600 {
		t.Errorf("config size = %dx%d, want 800x600", first.Width, first.Height)
	}
}

func TestSurfaceLostRecovery(t *testing.T) {
	m := newMockBackend()
	r := newTestRenderer(t, m)
	m.frameErrs = []error{errors.New("surface texture status: Lost")}

	err := r.Render()
	if !errors.Is(err, ErrSurfaceLost) {
		t.Fatalf("Render error = %v, want ErrSurfaceLost", err)
	}
	if r.State() != StateLost {
		t.Fatalf("State = %s, want lost", r.State())
	}

	// Rendering again without a resize does not touch the surface.
	if err := r.Render(); !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("second Render error = %v, want ErrSurfaceLost", err)
	}
	if m.beginFrames != 1 {
		t.Errorf("BeginFrame called %d times, want 1", m.beginFrames)
	}

	w, h := r.Size()
	r.Resize(w, h)
	if r.State() != StateReady {
		t.Fatalf("State after resize = %s, want ready", r.State())
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render after recovery: %v", err)
	}
	if len(m.draws) != 1 {
		t.Errorf("draws = %d, want 1", len(m.draws))
	}
}

func TestTransientFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"outdated", errors.New("Outdated"), ErrSurfaceOutdated},
		{"timeout", errors.New("surface texture status: Timeout"), ErrSurfaceTimeout},
		{"sentinel", ErrSurfaceTimeout, ErrSurfaceTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockBackend()
			r := newTestRenderer(t, m)
			m.frameErrs = []error{tt.err}

			err := r.Render()
			if !errors.Is(err, tt.want) || !IsTransient(err) {
				t.Fatalf("Render error = %v, want transient %v", err, tt.want)
			}
			if r.State() != StateReady {
				t.Errorf("State = %s, want ready", r.State())
			}
			if err := r.Render(); err != nil {
				t.Errorf("next Render: %v", err)
			}
		})
	}
}

func TestFatalFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"out of memory", errors.New("wgpu.(*Surface).GetCurrentTexture(): out-of-memory"), ErrSurfaceOutOfMemory},
		{"device lost", errors.New("wgpu.(*Surface).GetCurrentTexture(): device-lost"), ErrDeviceLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockBackend()
			r := newTestRenderer(t, m)
			m.frameErrs = []error{tt.err}

			err := r.Render()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Render error = %v, want %v", err, tt.want)
			}
			if errors.Is(err, ErrSurfaceLost) {
				t.Errorf("Render error %v classified as a recoverable lost surface", err)
			}
			if r.State() != StateFatal {
				t.Errorf("State = %s, want fatal", r.State())
			}
			r.Resize(640, 480)
			if err := r.Render(); !errors.Is(err, ErrNotReady) {
				t.Errorf("Render after fatal = %v, want ErrNotReady", err)
			}
		})
	}
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mockBackend)
		opts  []RendererBuilderOption
		want  error
	}{
		{
			name:  "no adapter",
			setup: func(m *mockBackend) { m.requestErr = ErrNoAdapter },
			want:  ErrNoAdapter,
		},
		{
			name:  "no device",
			setup: func(m *mockBackend) { m.requestErr = ErrNoDevice },
			want:  ErrNoDevice,
		},
		{
			name:  "surface without formats",
			setup: func(m *mockBackend) { m.caps.Formats = nil },
			want:  ErrNoAdapter,
		},
		{
			name:  "pipeline creation",
			setup: func(m *mockBackend) { m.registerErr = errors.New("validation error") },
			want:  ErrPipeline,
		},
		{
			name:  "unknown projection",
			setup: func(m *mockBackend) {},
			opts:  []RendererBuilderOption{WithProjection(camera.Projection(42))},
			want:  ErrShaderCompile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockBackend()
			tt.setup(m)
			opts := append([]RendererBuilderOption{WithBackend(m), WithShaderValidation(false)}, tt.opts...)
			r := NewRenderer(opts...)

			err := r.Init(context.Background(), 1280, 720)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Init error = %v, want %v", err, tt.want)
			}
			if r.State() != StateFatal {
				t.Errorf("State = %s, want fatal", r.State())
			}
			if err := r.Render(); !errors.Is(err, ErrNotReady) {
				t.Errorf("Render = %v, want ErrNotReady", err)
			}
			if m.beginFrames != 0 {
				t.Error("BeginFrame called after failed init")
			}
		})
	}
}

func TestInitTwice(t *testing.T) {
	m := newMockBackend()
	r := newTestRenderer(t, m)

	if err := r.Init(context.Background(), 1280, 720); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init = %v, want ErrAlreadyInitialized", err)
	}
	if r.State() != StateReady {
		t.Errorf("State = %s, want ready", r.State())
	}
}

func TestRenderBeforeInit(t *testing.T) {
	r := NewRenderer(WithBackend(newMockBackend()))
	if err := r.Render(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Render = %v, want ErrNotReady", err)
	}
}

func TestWriteCamera(t *testing.T) {
	m := newMockBackend()
	r := NewRenderer(WithBackend(m), WithShaderValidation(false))

	if err := r.WriteCamera(camera.NewUniform(camera.ProjectionPerspective)); err == nil {
		t.Error("WriteCamera accepted a uniform of the wrong projection")
	}

	u := camera.NewUniform(camera.ProjectionSpherical)
	s := camera.NewState(2)
	s.Theta = 12
	u.Update(s)
	if err := r.WriteCamera(u); err != nil {
		t.Fatalf("WriteCamera before Init: %v", err)
	}
	if len(m.writes) != 0 {
		t.Fatal("WriteCamera before Init reached the backend")
	}

	if err := r.Init(context.Background(), 1280, 720); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(m.writes) != 1 || !reflect.DeepEqual(m.writes[0], u.Marshal()) {
		t.Errorf("Init did not upload the staged camera: %v", m.writes)
	}

	s.Phi = 40
	u.Update(s)
	if err := r.WriteCamera(u); err != nil {
		t.Fatalf("WriteCamera: %v", err)
	}
	if len(m.writes) != 2 || !reflect.DeepEqual(m.writes[1], u.Marshal()) {
		t.Errorf("WriteCamera did not upload fresh bytes: %v", m.writes)
	}
}

// countingPool records how often the decode pool is stopped.
type countingPool struct {
	worker.DynamicWorkerPool
	stops int
}

func (p *countingPool) Stop() {
	p.stops++
	p.DynamicWorkerPool.Stop()
}

func TestRelease(t *testing.T) {
	m := newMockBackend()
	r := newTestRenderer(t, m)
	pool := &countingPool{DynamicWorkerPool: r.(*renderer).decodePool}
	r.(*renderer).decodePool = pool

	r.Release()
	r.Release()

	if !m.released {
		t.Error("backend not released")
	}
	if pool.stops != 1 {
		t.Errorf("decode pool stopped %d times, want 1", pool.stops)
	}
	if r.State() != StateReleased {
		t.Errorf("State = %s, want released", r.State())
	}
	if err := r.Render(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Render after Release = %v, want ErrNotReady", err)
	}
}

func TestSurfaceTextureAcquired(t *testing.T) {
	if surfaceTextureAcquired(nil) {
		t.Error("nil texture reported as acquired")
	}
	if surfaceTextureAcquired(&wgpu.Texture{}) {
		t.Error("texture without a native handle reported as acquired")
	}
}

func TestClassifySurfaceError(t *testing.T) {
	other := errors.New("device destroyed")
	tests := []struct {
		in   error
		want error
	}{
		{errors.New("Surface texture status: Lost"), ErrSurfaceLost},
		{errors.New("outdated"), ErrSurfaceOutdated},
		{errors.New("TIMEOUT"), ErrSurfaceTimeout},
		{errors.New("OutOfMemory"), ErrSurfaceOutOfMemory},
		{errors.New("wgpu.(*Surface).GetCurrentTexture(): out-of-memory"), ErrSurfaceOutOfMemory},
		{errors.New("wgpu.(*Surface).GetCurrentTexture(): device-lost"), ErrDeviceLost},
		{errors.New("wgpu.(*Surface).GetCurrentTexture(): lost"), ErrSurfaceLost},
		{errors.New("wgpu.(*Surface).GetCurrentTexture(): outdated"), ErrSurfaceOutdated},
		{errors.New("wgpu.(*Surface).GetCurrentTexture(): timeout"), ErrSurfaceTimeout},
		{other, other},
	}

	for _, tt := range tests {
		got := classifySurfaceError(tt.in)
		if !errors.Is(got, tt.want) {
			t.Errorf("classifySurfaceError(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.want == ErrDeviceLost && errors.Is(got, ErrSurfaceLost) {
			t.Errorf("classifySurfaceError(%v) treats a lost device as a lost surface", tt.in)
		}
	}
	if classifySurfaceError(nil) != nil {
		t.Error("classifySurfaceError(nil) != nil")
	}
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		in   string
		want PresentMode
		ok   bool
	}{
		{"", PresentModeAuto, true},
		{"VSync", PresentModeVSync, true},
		{"immediate", PresentModeUncapped, true},
		{"mailbox", PresentModeAuto, false},
	}
	for _, tt := range tests {
		got, ok := ParsePresentMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePresentMode(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
