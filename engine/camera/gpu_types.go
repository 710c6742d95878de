package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection selects how the camera State is encoded for the panorama shader.
type Projection int

const (
	// ProjectionSpherical uploads the raw angles; the shader casts a ray per pixel from
	// theta/phi/fovy/aspect and samples the equirectangular image directly.
	ProjectionSpherical Projection = iota

	// ProjectionPerspective uploads a composed view-projection matrix; the shader inverts it
	// to recover the ray per pixel. Kept for perspective rendering paths.
	ProjectionPerspective
)

// GPUSphericalUniformSource is the canonical WGSL definition of the spherical Camera struct.
// Matches GPUSphericalUniform layout exactly (16 bytes).
//
//go:embed assets/spherical_uniform.wgsl
var GPUSphericalUniformSource string

// GPUViewProjUniformSource is the canonical WGSL definition of the perspective Camera struct.
// Matches GPUViewProjUniform layout exactly (64 bytes).
//
//go:embed assets/view_proj_uniform.wgsl
var GPUViewProjUniformSource string

// Perspective clip planes used by the view-projection variant.
const (
	ZNear float32 = 0.1
	ZFar  float32 = 100.0
)

// OpenGLToWGPU remaps clip-space depth from OpenGL's [-1, 1] to WebGPU's [0, 1].
// Column-major, as mgl32 stores it: z' = 0.5*z + 0.5*w.
var OpenGLToWGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// String returns the configuration name of the projection.
func (p Projection) String() string {
	switch p {
	case ProjectionSpherical:
		return "spherical"
	case ProjectionPerspective:
		return "perspective"
	default:
		return "unknown"
	}
}

// UniformSource returns the WGSL Camera struct definition matching the projection's uniform layout.
//
// Returns:
//   - string: the WGSL struct source
func (p Projection) UniformSource() string {
	if p == ProjectionPerspective {
		return GPUViewProjUniformSource
	}
	return GPUSphericalUniformSource
}

// ParseProjection converts a configuration name into a Projection.
//
// Parameters:
//   - name: "spherical" or "perspective"
//
// Returns:
//   - Projection: the parsed projection
//   - bool: false if the name is unknown
func ParseProjection(name string) (Projection, bool) {
	switch name {
	case "spherical":
		return ProjectionSpherical, true
	case "perspective":
		return ProjectionPerspective, true
	default:
		return ProjectionSpherical, false
	}
}

// Uniform is a fixed-layout, GPU-transferable snapshot of a camera State.
// The byte layout returned by Marshal is a wire contract with the panorama shader for
// the matching Projection; field order must not change without updating the WGSL.
type Uniform interface {
	// Projection returns which shader layout this uniform encodes.
	//
	// Returns:
	//   - Projection: the projection variant
	Projection() Projection

	// Update fully recomputes the uniform from the state. No incremental update is performed.
	// The state's Aspect must be positive.
	//
	// Parameters:
	//   - s: the camera state to snapshot
	Update(s State)

	// Size returns the uniform size in bytes.
	//
	// Returns:
	//   - int: the byte size
	Size() int

	// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
	//
	// Returns:
	//   - []byte: the serialized little-endian byte buffer
	Marshal() []byte
}

// NewUniform creates the zero/identity uniform for the given projection.
//
// Parameters:
//   - p: the projection variant
//
// Returns:
//   - Uniform: the new uniform
func NewUniform(p Projection) Uniform {
	if p == ProjectionPerspective {
		return &GPUViewProjUniform{ViewProj: mgl32.Ident4()}
	}
	return &GPUSphericalUniform{}
}

// GPUSphericalUniform is the GPU-aligned representation of the spherical camera uniform.
// Matches the WGSL Camera struct in GPUSphericalUniformSource exactly.
// Size: 16 bytes.
type GPUSphericalUniform struct {
	Theta  float32 // offset  0: vertical look angle in degrees
	Phi    float32 // offset  4: horizontal look angle in degrees
	Fovy   float32 // offset  8: vertical field of view in degrees
	Aspect float32 // offset 12: width / height
}

var _ Uniform = &GPUSphericalUniform{}

func (g *GPUSphericalUniform) Projection() Projection {
	return ProjectionSpherical
}

func (g *GPUSphericalUniform) Update(s State) {
	g.Theta = s.Theta
	g.Phi = s.Phi
	g.Fovy = s.Fovy
	g.Aspect = s.Aspect
}

func (g *GPUSphericalUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPUSphericalUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Theta))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Phi))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Fovy))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Aspect))
	return buf
}

// GPUViewProjUniform is the GPU-aligned representation of the perspective camera uniform.
// Matches the WGSL Camera struct in GPUViewProjUniformSource exactly (mat4x4<f32>, column-major).
// Size: 64 bytes.
type GPUViewProjUniform struct {
	ViewProj mgl32.Mat4 // offset 0: OpenGLToWGPU * projection * view
}

var _ Uniform = &GPUViewProjUniform{}

func (g *GPUViewProjUniform) Projection() Projection {
	return ProjectionPerspective
}

func (g *GPUViewProjUniform) Update(s State) {
	g.ViewProj = ViewProjection(s)
}

func (g *GPUViewProjUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPUViewProjUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	return buf
}

// LookDirection returns the unit view direction for the given angles.
// Theta = Phi = 0 looks down -Z; positive Theta looks toward +Y, positive Phi toward +X.
//
// Parameters:
//   - theta: vertical angle in degrees
//   - phi: horizontal angle in degrees
//
// Returns:
//   - mgl32.Vec3: the unit direction
func LookDirection(theta, phi float32) mgl32.Vec3 {
	t := float64(mgl32.DegToRad(theta))
	p := float64(mgl32.DegToRad(phi))
	return mgl32.Vec3{
		float32(math.Cos(t) * math.Sin(p)),
		float32(math.Sin(t)),
		float32(-math.Cos(t) * math.Cos(p)),
	}
}

// ViewProjection composes the WebGPU view-projection matrix for a state: a right-handed
// look-at from the origin toward LookDirection with +Y up, an OpenGL-style perspective
// from Fovy/Aspect/ZNear/ZFar, and the OpenGLToWGPU depth correction.
//
// Parameters:
//   - s: the camera state
//
// Returns:
//   - mgl32.Mat4: the column-major view-projection matrix
func ViewProjection(s State) mgl32.Mat4 {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, LookDirection(s.Theta, s.Phi), mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(s.Fovy), s.Aspect, ZNear, ZFar)
	return OpenGLToWGPU.Mul4(proj).Mul4(view)
}
