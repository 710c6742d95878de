package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.PresentMode() != renderer.PresentModeAuto {
		t.Errorf("expected auto present mode, got %v", cfg.PresentMode())
	}
	if cfg.Projection() != camera.ProjectionSpherical {
		t.Errorf("expected spherical projection, got %v", cfg.Projection())
	}
	if got, want := cfg.ClearColor(), (wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}); got != want {
		t.Errorf("expected clear colour %v, got %v", want, got)
	}
	if cfg.Panorama.MaxTextureSize != renderer.DefaultMaxTextureSize {
		t.Errorf("expected max texture size %d, got %d", renderer.DefaultMaxTextureSize, cfg.Panorama.MaxTextureSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Graphics.ProfileInterval != time.Second {
		t.Errorf("expected 1s profile interval, got %v", cfg.Graphics.ProfileInterval)
	}
	if !cfg.Graphics.ShaderValidation {
		t.Error("expected shader validation on by default")
	}
	if cfg.Window.MinWidth != 320 || cfg.Window.MinHeight != 180 || cfg.Window.MaxWidth != 0 || cfg.Window.MaxHeight != 0 {
		t.Errorf("window limits = %+v", cfg.Window)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
window:
  title: "lobby"
  width: 1920
  height: 1080
graphics:
  present_mode: vsync
  projection: perspective
  frame_limit: 60
  clear_color: [0, 0, 0, 1]
camera:
  bindings:
    rotate_up: w
    rotate_down: s
panorama:
  path: /srv/pano/lobby.jpg
  max_texture_size: 4096
logging:
  level: debug
`)

	cfg, err := Load(&Flags{Config: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Title != "lobby" || cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.PresentMode() != renderer.PresentModeVSync {
		t.Errorf("present mode = %v, want vsync", cfg.PresentMode())
	}
	if cfg.Projection() != camera.ProjectionPerspective {
		t.Errorf("projection = %v, want perspective", cfg.Projection())
	}
	if cfg.Graphics.FrameLimit != 60 {
		t.Errorf("frame limit = %v, want 60", cfg.Graphics.FrameLimit)
	}
	if cfg.ClearColor() != (wgpu.Color{A: 1}) {
		t.Errorf("clear colour = %v", cfg.ClearColor())
	}
	src := cfg.PanoramaSource()
	if src.Path != "/srv/pano/lobby.jpg" || src.MaxSize != 4096 {
		t.Errorf("panorama source = %+v", src)
	}

	bindings, err := cfg.KeyBindings()
	if err != nil {
		t.Fatalf("KeyBindings: %v", err)
	}
	if len(bindings) != 2 || bindings[camera.ControlRotateUp] != common.KeyW || bindings[camera.ControlRotateDown] != common.KeyS {
		t.Errorf("bindings = %v", bindings)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 1920
graphics:
  projection: perspective
`)

	flags, err := ParseFlags([]string{"-config", path, "-width", "800", "-projection", "spherical", "-debug", "-profile", "/tmp/pano.png"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 800 {
		t.Errorf("width = %d, want 800 from flags", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("height = %d, want default 720", cfg.Window.Height)
	}
	if cfg.Projection() != camera.ProjectionSpherical {
		t.Errorf("projection = %v, want spherical from flags", cfg.Projection())
	}
	if cfg.Logging.Level != "debug" || !cfg.Graphics.Profiling {
		t.Errorf("debug/profile flags not applied: %+v %+v", cfg.Logging, cfg.Graphics)
	}
	if cfg.Panorama.Path != "/tmp/pano.png" {
		t.Errorf("panorama path = %q, want positional argument", cfg.Panorama.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "graphics:\n  vsync: true\n", "vsync"},
		{"bad present mode", "graphics:\n  present_mode: mailbox\n", "present_mode"},
		{"bad projection", "graphics:\n  projection: fisheye\n", "projection"},
		{"bad size", "window:\n  width: 0\n", "window size"},
		{"negative limit", "window:\n  max_height: -1\n", "size limits"},
		{"min above max", "window:\n  min_width: 800\n  max_width: 640\n", "min_width 800 exceeds max_width 640"},
		{"bad colour", "graphics:\n  clear_color: [2, 0, 0, 1]\n", "clear_color"},
		{"bad control", "camera:\n  bindings:\n    spin: up\n", "spin"},
		{"bad key", "camera:\n  bindings:\n    reset: f13\n", "f13"},
		{"escape binding", "camera:\n  bindings:\n    reset: escape\n", "escape"},
		{"bad level", "logging:\n  level: loud\n", "loud"},
		{"duplicate key", "camera:\n  bindings:\n    rotate_up: w\n    rotate_down: w\n", "bound to both rotate_up and rotate_down"},
		{"negative profile interval", "graphics:\n  profile_interval: -1s\n", "profile_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(&Flags{Config: writeConfig(t, tt.content)})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(&Flags{Config: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(&Flags{Config: writeConfig(t, "")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("width = %d, want default", cfg.Window.Width)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Window.Title = "atrium"
	cfg.Camera.Bindings["reset"] = "home"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := Load(&Flags{Config: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Window.Title != "atrium" {
		t.Errorf("title = %q, want atrium", loaded.Window.Title)
	}
	bindings, err := loaded.KeyBindings()
	if err != nil {
		t.Fatalf("KeyBindings: %v", err)
	}
	if bindings[camera.ControlReset] != common.KeyHome {
		t.Errorf("reset bound to %d, want home", bindings[camera.ControlReset])
	}
}

func TestSaveToUserConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)

	cfg := Default()
	cfg.Graphics.ProfileInterval = 250 * time.Millisecond
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(UserConfigPath(), dir) {
		t.Fatalf("UserConfigPath() = %q, want under %q", UserConfigPath(), dir)
	}

	loaded, err := Load(&Flags{Config: UserConfigPath()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Graphics.ProfileInterval != 250*time.Millisecond {
		t.Errorf("profile interval = %v, want 250ms", loaded.Graphics.ProfileInterval)
	}
}

func TestKeyBindingsRejectsSharedKey(t *testing.T) {
	cfg := Default()
	cfg.Camera.Bindings = map[string]string{
		"rotate_left":  "a",
		"rotate_right": "d",
		"reset":        "a",
	}
	for i := 0; i < 20; i++ {
		_, err := cfg.KeyBindings()
		if err == nil {
			t.Fatal("expected an error for a key bound twice")
		}
		if want := `key "a" bound to both rotate_left and reset`; err.Error() != want {
			t.Fatalf("error = %q, want %q", err, want)
		}
	}
}

func TestParseFlagsSaveConfig(t *testing.T) {
	flags, err := ParseFlags([]string{"-save-config", "-width", "640"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if !flags.SaveConfig || flags.Width != 640 {
		t.Errorf("flags = %+v", flags)
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	fs, _ := NewFlagSet("test")
	fs.SetOutput(&strings.Builder{})
	if err := fs.Parse([]string{"-fullscreen"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}
