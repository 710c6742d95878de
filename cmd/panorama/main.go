// Command panorama opens a window and displays an equirectangular panorama that can be
// looked around with the keyboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-pano/engine"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pano/engine/window"
	"github.com/Carmen-Shannon/oxy-pano/internal/config"
	"github.com/Carmen-Shannon/oxy-pano/internal/logger"
)

func init() {
	// glfw and the wgpu surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== oxy-pano ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if flags.SaveConfig {
		if err := cfg.Save(); err != nil {
			logger.Error("save config", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("path", config.UserConfigPath()))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

// run wires window, renderer, controller and engine from the configuration and blocks until the viewer exits.
func run(ctx context.Context, cfg *config.Config) error {
	bindings, err := cfg.KeyBindings()
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	r := renderer.NewRenderer(
		renderer.WithSurfaceDescriptor(win.SurfaceDescriptor()),
		renderer.WithLogger(logger.Named("renderer")),
		renderer.WithPresentMode(cfg.PresentMode()),
		renderer.WithClearColor(cfg.ClearColor()),
		renderer.WithForceSoftwareRenderer(cfg.Graphics.ForceSoftware),
		renderer.WithProjection(cfg.Projection()),
		renderer.WithPanorama(cfg.PanoramaSource()),
		renderer.WithMaxTextureSize(cfg.Panorama.MaxTextureSize),
		renderer.WithShaderValidation(cfg.Graphics.ShaderValidation),
	)

	e := engine.NewEngine(win, r,
		engine.WithLogger(logger.Named("engine")),
		engine.WithController(camera.NewController(camera.WithKeyBindings(bindings))),
		engine.WithProfiling(cfg.Graphics.Profiling),
		engine.WithProfilerInterval(cfg.Graphics.ProfileInterval),
		engine.WithTitle(cfg.Window.Title),
		engine.WithRenderFrameLimit(cfg.Graphics.FrameLimit),
	)
	return e.Run(ctx)
}
