// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pano/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Panorama PanoramaConfig `yaml:"panorama"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds the initial window settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`  // 0 = unconstrained
	MinHeight int    `yaml:"min_height"` // 0 = unconstrained
	MaxWidth  int    `yaml:"max_width"`  // 0 = unconstrained
	MaxHeight int    `yaml:"max_height"` // 0 = unconstrained
}

// GraphicsConfig holds surface and rendering settings.
type GraphicsConfig struct {
	PresentMode     string        `yaml:"present_mode"`   // auto | vsync | uncapped
	ForceSoftware   bool          `yaml:"force_software"` // request the fallback adapter
	FrameLimit      float64       `yaml:"frame_limit"`    // 0 = uncapped
	Projection      string        `yaml:"projection"`     // spherical | perspective
	ClearColor      [4]float64    `yaml:"clear_color"`
	Profiling       bool          `yaml:"profiling"`
	ProfileInterval time.Duration `yaml:"profile_interval"` // how often frame stats and the title FPS refresh
	// ShaderValidation compiles the WGSL through naga before handing it to the driver.
	ShaderValidation bool `yaml:"shader_validation"`
}

// CameraConfig holds the key map. Keys are control names (rotate_up, reset, ...) and values
// are key names (up, equal, r, ...). Controls left out keep their default key.
type CameraConfig struct {
	Bindings map[string]string `yaml:"bindings"`
}

// PanoramaConfig holds the image to display. An empty path shows the built-in grid.
type PanoramaConfig struct {
	Path           string `yaml:"path"`
	MaxTextureSize uint32 `yaml:"max_texture_size"` // largest texture side; the device limit still applies
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "oxy-pano",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 180,
		},
		Graphics: GraphicsConfig{
			PresentMode:      "auto",
			Projection:       "spherical",
			ClearColor:       [4]float64{0.1, 0.2, 0.3, 1.0},
			ProfileInterval:  time.Second,
			ShaderValidation: true,
		},
		Camera: CameraConfig{
			Bindings: map[string]string{},
		},
		Panorama: PanoramaConfig{
			MaxTextureSize: renderer.DefaultMaxTextureSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every enumerated and numeric setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 || c.Window.MaxWidth < 0 || c.Window.MaxHeight < 0 {
		errs = append(errs, errors.New("window size limits must not be negative"))
	}
	if c.Window.MaxWidth > 0 && c.Window.MinWidth > c.Window.MaxWidth {
		errs = append(errs, fmt.Errorf("window min_width %d exceeds max_width %d", c.Window.MinWidth, c.Window.MaxWidth))
	}
	if c.Window.MaxHeight > 0 && c.Window.MinHeight > c.Window.MaxHeight {
		errs = append(errs, fmt.Errorf("window min_height %d exceeds max_height %d", c.Window.MinHeight, c.Window.MaxHeight))
	}
	if _, ok := renderer.ParsePresentMode(c.Graphics.PresentMode); !ok {
		errs = append(errs, fmt.Errorf("unknown present_mode %q", c.Graphics.PresentMode))
	}
	if _, ok := camera.ParseProjection(c.Graphics.Projection); !ok {
		errs = append(errs, fmt.Errorf("unknown projection %q", c.Graphics.Projection))
	}
	if c.Panorama.MaxTextureSize == 0 {
		errs = append(errs, errors.New("panorama max_texture_size must be positive"))
	}
	if c.Graphics.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("frame_limit must not be negative, got %v", c.Graphics.FrameLimit))
	}
	if c.Graphics.ProfileInterval < 0 {
		errs = append(errs, fmt.Errorf("profile_interval must not be negative, got %v", c.Graphics.ProfileInterval))
	}
	for i, v := range c.Graphics.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] = %v is outside [0, 1]", i, v))
		}
	}
	if _, err := c.KeyBindings(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PresentMode returns the parsed present mode, PresentModeAuto when unknown.
func (c *Config) PresentMode() renderer.PresentMode {
	m, _ := renderer.ParsePresentMode(c.Graphics.PresentMode)
	return m
}

// Projection returns the parsed projection, ProjectionSpherical when unknown.
func (c *Config) Projection() camera.Projection {
	p, _ := camera.ParseProjection(c.Graphics.Projection)
	return p
}

// ClearColor returns the configured clear colour as a wgpu.Color.
func (c *Config) ClearColor() wgpu.Color {
	cc := c.Graphics.ClearColor
	return wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// PanoramaSource returns the decode request for the configured image.
func (c *Config) PanoramaSource() common.PanoramaSource {
	return common.PanoramaSource{Path: c.Panorama.Path, MaxSize: c.Panorama.MaxTextureSize}
}

// KeyBindings resolves the configured key map into camera controller bindings.
// Escape cannot be bound; it always exits the viewer. A key may serve only one configured control.
func (c *Config) KeyBindings() (map[camera.Control]uint32, error) {
	known := make(map[string]bool, len(camera.Controls()))
	for _, ctl := range camera.Controls() {
		known[ctl.String()] = true
	}
	names := slices.Sorted(maps.Keys(c.Camera.Bindings))
	for _, name := range names {
		if !known[name] {
			return nil, fmt.Errorf("unknown camera control %q", name)
		}
	}

	out := make(map[camera.Control]uint32, len(c.Camera.Bindings))
	owner := make(map[uint32]camera.Control, len(c.Camera.Bindings))
	for _, ctl := range camera.Controls() {
		keyName, ok := c.Camera.Bindings[ctl.String()]
		if !ok {
			continue
		}
		key, ok := common.KeyFromName(keyName)
		if !ok {
			return nil, fmt.Errorf("unknown key %q for control %s", keyName, ctl)
		}
		if key == common.KeyEsc {
			return nil, fmt.Errorf("control %s cannot be bound to escape", ctl)
		}
		if prev, dup := owner[key]; dup {
			return nil, fmt.Errorf("key %q bound to both %s and %s", keyName, prev, ctl)
		}
		owner[key] = ctl
		out[ctl] = key
	}
	return out, nil
}
