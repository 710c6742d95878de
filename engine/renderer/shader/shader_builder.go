package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithValidation toggles naga validation of the WGSL source. Enabled by default.
// Disabling it defers all error reporting to the GPU driver at pipeline creation.
//
// Parameters:
//   - enabled: false to skip the SPIR-V compile step
//
// Returns:
//   - ShaderBuilderOption: a function that sets the validation flag
func WithValidation(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = enabled
	}
}

// WithVisibility overrides the stage visibility applied to every parsed bind group layout entry.
// Defaults to vertex | fragment.
//
// Parameters:
//   - visibility: the shader stage flags
//
// Returns:
//   - ShaderBuilderOption: a function that sets the visibility
func WithVisibility(visibility wgpu.ShaderStage) ShaderBuilderOption {
	return func(s *shader) {
		s.visibility = visibility
	}
}

// WithPreProcessor sets the PreProcessor that expands @oxy: annotations before parsing.
//
// Parameters:
//   - pp: the pre-processor to apply
//
// Returns:
//   - ShaderBuilderOption: a function that sets the pre-processor
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}
