package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// ShaderType identifies a render pipeline stage.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage; for the panorama programs it synthesises the full-screen triangle.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage; for the panorama programs it samples the equirectangular image.
	ShaderTypeFragment
)

var (
	// ErrCompile is returned when WGSL source fails validation.
	ErrCompile = errors.New("shader compilation failed")

	// ErrMissingEntryPoint is returned when a required @vertex or @fragment entry point is absent.
	ErrMissingEntryPoint = errors.New("shader entry point missing")
)

// shader is the implementation of the Shader interface.
// It holds a single WGSL program carrying both the vertex and fragment stages.
type shader struct {
	key                        string
	source                     string
	entryPoints                map[ShaderType]string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	spirv                      []byte
	module                     *wgpu.ShaderModuleDescriptor

	validate   bool
	visibility wgpu.ShaderStage
	pp         PreProcessor
}

// Shader defines the interface for a loaded and parsed WGSL render program. It exposes the
// program's key, source, per-stage entry points and the bind group layout descriptors needed
// for pipeline creation and resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the GPU object label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point function name for the given stage.
	//
	// Parameters:
	//   - stage: ShaderTypeVertex or ShaderTypeFragment
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main"), or empty if the stage is absent
	EntryPoint(stage ShaderType) string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the @group(N) index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the WGSL variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not declared
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a WGSL variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// SPIRV returns the SPIR-V produced while validating the source, or nil when validation was skipped.
	//
	// Returns:
	//   - []byte: little-endian SPIR-V words
	SPIRV() []byte

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes a WGSL render program (when a PreProcessor is set), parses it and,
// unless disabled, validates it by compiling it to SPIR-V with naga.
// Both a @vertex and a @fragment entry point are required.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the WGSL source code
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrCompile or ErrMissingEntryPoint (wrapped) if the source is unusable
func NewShader(key, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:         key,
		source:      source,
		entryPoints: make(map[ShaderType]string, 2),
		validate:    true,
		visibility:  wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}
	for _, option := range options {
		option(s)
	}

	if s.pp != nil {
		processed, err := s.pp.Process(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCompile, key, err)
		}
		s.source = processed
	}
	source = s.source

	if s.validate {
		spirv, err := naga.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCompile, key, err)
		}
		s.spirv = spirv
	}

	for _, stage := range []ShaderType{ShaderTypeVertex, ShaderTypeFragment} {
		name := parseEntryPoint(source, stage)
		if name == "" {
			return nil, fmt.Errorf("%w: %s has no %s stage", ErrMissingEntryPoint, key, stage)
		}
		s.entryPoints[stage] = name
	}

	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(source, s.visibility)
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	return s, nil
}

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage ShaderType) string {
	return s.entryPoints[stage]
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) SPIRV() []byte {
	return s.spirv
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
