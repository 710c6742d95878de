package shader

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Bind group 0 layout shared by every panorama program.
const (
	// BindingCamera is the camera uniform binding.
	BindingCamera = 0
	// BindingPanorama is the equirectangular texture_2d<f32> binding.
	BindingPanorama = 1
	// BindingSampler is the panorama sampler binding.
	BindingSampler = 2
)

// PanoramaSource returns the raw embedded WGSL program matching a camera projection.
// The program carries an //@oxy:include camera annotation in place of its Camera struct.
//
// Parameters:
//   - p: the camera projection
//
// Returns:
//   - string: the shader key
//   - string: the WGSL source
//   - error: an error if the asset is missing
func PanoramaSource(p camera.Projection) (string, string, error) {
	key := "panorama_" + p.String()
	data, err := assets.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return "", "", fmt.Errorf("shader: no program for projection %s: %w", p, err)
	}
	return key, string(data), nil
}

// NewPanoramaShader loads and parses the panorama program for a camera projection, expanding
// its camera include to the projection's uniform struct.
//
// Parameters:
//   - p: the camera projection
//   - options: functional options forwarded to NewShader
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the asset is missing or fails validation
func NewPanoramaShader(p camera.Projection, options ...ShaderBuilderOption) (Shader, error) {
	key, source, err := PanoramaSource(p)
	if err != nil {
		return nil, err
	}
	options = append([]ShaderBuilderOption{
		WithPreProcessor(NewCameraPreProcessor(p)),
		WithVisibility(PanoramaVisibility(p)),
	}, options...)
	return NewShader(key, source, options...)
}

// PanoramaVisibility returns the stages that read group 0 in the panorama program for a projection.
// The spherical program only samples in the fragment stage; the perspective program also
// unprojects the camera matrix in the vertex stage.
func PanoramaVisibility(p camera.Projection) wgpu.ShaderStage {
	if p == camera.ProjectionSpherical {
		return wgpu.ShaderStageFragment
	}
	return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
}
