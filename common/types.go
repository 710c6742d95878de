// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used by the renderer backend to stage the panorama before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// Valid reports whether the staging data describes a non-empty RGBA image whose pixel slice matches its dimensions.
//
// Returns:
//   - bool: true if the data can be uploaded as-is
func (t TextureStagingData) Valid() bool {
	return t.Width > 0 && t.Height > 0 && len(t.Pixels) == int(t.Width)*int(t.Height)*4
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero values are replaced by the backend defaults (see Coalesce) when the sampler is created.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// PanoramaSampler returns the sampler configuration used for equirectangular panoramas.
// Longitude wraps around (repeat on U) while latitude is clamped at the poles (clamp on V).
//
// Returns:
//   - SamplerStagingData: the panorama sampler configuration
func PanoramaSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
	}
}
