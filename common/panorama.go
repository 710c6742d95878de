package common

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PanoramaSource describes where an equirectangular panorama image comes from.
// Either Data (embedded bytes) or Path (file on disk) must be set; Data takes priority.
type PanoramaSource struct {
	// Path is the file path of the panorama image.
	Path string

	// Data contains raw encoded image bytes (PNG, JPEG, BMP, TIFF or WebP).
	Data []byte

	// MaxSize is the largest allowed texture dimension. Images with a larger side are
	// downscaled preserving aspect ratio. Zero disables the limit.
	MaxSize uint32
}

// MaxDecodePixels bounds the pixel count of a panorama accepted for decoding. The header
// is checked before any pixel data is decoded.
const MaxDecodePixels = 1 << 28

// Decode decodes the panorama to tightly packed RGBA pixel data ready for GPU upload.
// When the source is larger than MaxSize on either axis it is resampled with a Catmull-Rom filter.
// Reference: https://pkg.go.dev/golang.org/x/image/draw
//
// Returns:
//   - TextureStagingData: the decoded RGBA pixels and dimensions
//   - error: error if the source is empty, too large or decoding fails
func (p PanoramaSource) Decode() (TextureStagingData, error) {
	data, name, err := p.read()
	if err != nil {
		return TextureStagingData{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to read %s header: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return TextureStagingData{}, fmt.Errorf("panorama has zero size")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return TextureStagingData{}, fmt.Errorf("%s is %dx%d, larger than %d pixels", name, cfg.Width, cfg.Height, MaxDecodePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return TextureStagingData{}, fmt.Errorf("panorama has zero size")
	}

	width, height := FitWithin(uint32(bounds.Dx()), uint32(bounds.Dy()), p.MaxSize)
	dst := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	if int(width) == bounds.Dx() && int(height) == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	}

	return TextureStagingData{
		Pixels: dst.Pix,
		Width:  width,
		Height: height,
	}, nil
}

// read returns the encoded bytes and a description of where they came from.
func (p PanoramaSource) read() ([]byte, string, error) {
	if len(p.Data) > 0 {
		return p.Data, "embedded panorama", nil
	}
	if p.Path == "" {
		return nil, "", fmt.Errorf("panorama has neither data nor path")
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open panorama file %s: %w", p.Path, err)
	}
	return data, "panorama file " + p.Path, nil
}

// FitWithin scales width and height down uniformly so that neither exceeds maxSize.
// Dimensions already within the limit, or a zero limit, are returned unchanged. Results are never below 1.
//
// Parameters:
//   - width, height: source dimensions in pixels
//   - maxSize: the largest allowed dimension (0 = unlimited)
//
// Returns:
//   - uint32, uint32: the fitted width and height
func FitWithin(width, height, maxSize uint32) (uint32, uint32) {
	if maxSize == 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	scale := float64(maxSize) / float64(max(width, height))
	w := uint32(math.Round(float64(width) * scale))
	h := uint32(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// GridPanorama generates a procedural equirectangular panorama: a sky-to-ground gradient
// overlaid with latitude/longitude lines every 15 degrees, with the equator and the
// zero meridian highlighted. It is used when no panorama image is configured.
//
// Parameters:
//   - width: texture width in pixels, at least 4 (height is width/2)
//
// Returns:
//   - TextureStagingData: the generated RGBA pixels
func GridPanorama(width uint32) TextureStagingData {
	width = max(width, 4)
	height := width / 2
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))

	cellX := float64(width) / 24  // 15 degrees of longitude
	cellY := float64(height) / 12 // 15 degrees of latitude
	for y := 0; y < int(height); y++ {
		v := float64(y) / float64(height-1)
		sky := color.RGBA{
			R: uint8(40 + 60*v),
			G: uint8(90 + 60*v),
			B: uint8(200 - 120*v),
			A: 255,
		}
		for x := 0; x < int(width); x++ {
			c := sky
			onMeridian := math.Mod(float64(x), cellX) < 1
			onParallel := math.Mod(float64(y), cellY) < 1
			if onMeridian || onParallel {
				c = color.RGBA{R: 230, G: 230, B: 230, A: 255}
			}
			if y == int(height)/2 || x == 0 {
				c = color.RGBA{R: 240, G: 80, B: 60, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	return TextureStagingData{
		Pixels: img.Pix,
		Width:  width,
		Height: height,
	}
}
