package renderer

import (
	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend sets the backend the renderer drives instead of creating the wgpu backend in Init.
//
// Parameters:
//   - backend: the RendererBackend to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithSurfaceDescriptor sets the platform surface descriptor used to create the wgpu backend.
//
// Parameters:
//   - desc: the descriptor, typically window.Window.SurfaceDescriptor()
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface descriptor option to a renderer
func WithSurfaceDescriptor(desc *wgpu.SurfaceDescriptor) RendererBuilderOption {
	return func(r *renderer) {
		r.surfaceDescriptor = desc
	}
}

// WithLogger sets the logger for lifecycle and surface events. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// Unsupported modes fall back to the surface's first present mode.
//
// Parameters:
//   - mode: the PresentMode to use (Auto, VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithClearColor sets the color the render pass clears to before drawing.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithProjection selects the camera uniform variant and the matching panorama program.
//
// Parameters:
//   - p: the camera projection (defaults to camera.ProjectionSpherical)
//
// Returns:
//   - RendererBuilderOption: a function that applies the projection option to a renderer
func WithProjection(p camera.Projection) RendererBuilderOption {
	return func(r *renderer) {
		r.projection = p
	}
}

// WithPanorama sets the equirectangular image to display. Without it a grid panorama is generated.
//
// Parameters:
//   - src: the panorama source
//
// Returns:
//   - RendererBuilderOption: a function that applies the panorama option to a renderer
func WithPanorama(src common.PanoramaSource) RendererBuilderOption {
	return func(r *renderer) {
		r.panorama = src
	}
}

// WithMaxTextureSize caps the panorama texture's largest side. The device limit still applies.
//
// Parameters:
//   - size: the cap in pixels; zero keeps DefaultMaxTextureSize
//
// Returns:
//   - RendererBuilderOption: a function that applies the texture size option to a renderer
func WithMaxTextureSize(size uint32) RendererBuilderOption {
	return func(r *renderer) {
		if size > 0 {
			r.maxTextureSize = size
		}
	}
}

// WithShaderValidation toggles naga validation of the panorama program before pipeline creation.
//
// Parameters:
//   - enabled: false to hand the WGSL straight to the driver
//
// Returns:
//   - RendererBuilderOption: a function that applies the validation option to a renderer
func WithShaderValidation(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderValidation = enabled
	}
}
