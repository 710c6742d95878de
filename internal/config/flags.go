package config

import "flag"

// Flags holds command-line overrides. Zero values leave the file or default setting untouched.
type Flags struct {
	Config      string
	Debug       bool
	Width       int
	Height      int
	Panorama    string
	Projection  string
	PresentMode string
	Software    bool
	Profile     bool
	FrameLimit  float64
	SaveConfig  bool
}

// NewFlagSet registers the viewer flags on a new flag set.
func NewFlagSet(name string) (*flag.FlagSet, *Flags) {
	f := &Flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.StringVar(&f.Panorama, "panorama", "", "Equirectangular image to display (png, jpeg, gif, bmp, tiff, webp)")
	fs.StringVar(&f.Projection, "projection", "", "Camera projection: spherical or perspective")
	fs.StringVar(&f.PresentMode, "present-mode", "", "Present mode: auto, vsync or uncapped")
	fs.BoolVar(&f.Software, "software", false, "Force the software (fallback) adapter")
	fs.BoolVar(&f.Profile, "profile", false, "Log frame rate and memory statistics")
	fs.Float64Var(&f.FrameLimit, "frame-limit", 0, "Maximum frames per second (0 = uncapped)")
	fs.BoolVar(&f.SaveConfig, "save-config", false, "Write the effective config to the user config directory and exit")
	return fs, f
}

// ParseFlags parses command-line arguments (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	fs, f := NewFlagSet("panorama")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.Panorama == "" && fs.NArg() > 0 {
		f.Panorama = fs.Arg(0)
	}
	return f, nil
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.Panorama != "" {
		cfg.Panorama.Path = f.Panorama
	}
	if f.Projection != "" {
		cfg.Graphics.Projection = f.Projection
	}
	if f.PresentMode != "" {
		cfg.Graphics.PresentMode = f.PresentMode
	}
	if f.Software {
		cfg.Graphics.ForceSoftware = true
	}
	if f.Profile {
		cfg.Graphics.Profiling = true
	}
	if f.FrameLimit > 0 {
		cfg.Graphics.FrameLimit = f.FrameLimit
	}
}
