package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-pano/common"
	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"github.com/Carmen-Shannon/oxy-pano/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pano/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pano/engine/window"
	"go.uber.org/zap"
)

// minimizedPollInterval throttles the loop while the window has no drawable area.
const minimizedPollInterval = 50 * time.Millisecond

// pendingResize is a size change waiting for the next tick boundary.
type pendingResize struct {
	width, height int
	set           bool
}

// engine implements the Engine interface.
// Runs the window, camera and renderer on a single cooperative loop.
type engine struct {
	window     window.Window
	renderer   renderer.Renderer
	controller camera.Controller
	state      camera.State
	uniform    camera.Uniform

	logger *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool
	profilerInterval time.Duration
	title            string // window title the FPS readout is appended to; empty disables it

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	resize  pendingResize
	err     error
	running bool
}

// Engine is the host loop of the viewer.
// It pulls events from the window, feeds key input to the camera controller and drives one
// frame per redraw request.
type Engine interface {
	// Run initializes the renderer if needed and loops until the window closes, Escape is
	// pressed, Quit is called, ctx is cancelled or a frame fails fatally. The renderer is
	// released and the window closed before Run returns.
	//
	// Parameters:
	//   - ctx: cancelling it stops the loop after the current iteration
	//
	// Returns:
	//   - error: the init or fatal frame error, nil on a normal exit
	Run(ctx context.Context) error

	// HandleEvent dispatches one window event.
	// Resizes are deferred until the next frame; a redraw runs the frame itself.
	//
	// Parameters:
	//   - ev: the event to dispatch
	//
	// Returns:
	//   - bool: false when the loop must exit
	HandleEvent(ev window.Event) bool

	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer driven by the loop.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Controller returns the camera controller receiving key input.
	//
	// Returns:
	//   - camera.Controller: the controller
	Controller() camera.Controller

	// CameraState returns a copy of the current camera state.
	//
	// Returns:
	//   - camera.State: the camera state
	CameraState() camera.State

	// Quit stops the loop at the end of the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine over an existing window and renderer.
// The camera starts looking straight ahead with the window's aspect ratio; the uniform
// variant follows the renderer's projection.
//
// Parameters:
//   - w: the window supplying events and the current size
//   - r: the renderer to drive, initialized or not
//   - options: functional options for engine configuration (logger, profiling, title, frame limit, controller)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(w window.Window, r renderer.Renderer, options ...EngineBuilderOption) Engine {
	e := &engine{
		window:   w,
		renderer: r,
		logger:   zap.NewNop(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.controller == nil {
		e.controller = camera.NewController()
	}
	e.state = camera.NewState(1)
	e.state.SetAspect(w.Width(), w.Height())
	e.uniform = camera.NewUniform(r.Projection())
	e.profiler = profiler.NewProfiler(e.logger)
	if e.profilerInterval > 0 {
		e.profiler.SetInterval(e.profilerInterval)
	}

	return e
}

func (e *engine) Run(ctx context.Context) error {
	defer e.shutdown()

	if e.renderer.State() == renderer.StateUninitialized {
		if err := e.renderer.Init(ctx, e.window.Width(), e.window.Height()); err != nil {
			return fmt.Errorf("init renderer: %w", err)
		}
	}
	e.logger.Info("engine started",
		zap.Int("width", e.window.Width()),
		zap.Int("height", e.window.Height()),
		zap.Stringer("projection", e.renderer.Projection()),
	)

	e.running = true
	for e.running {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", zap.Error(ctx.Err()))
			return nil
		default:
		}

		for _, ev := range e.window.PollEvents() {
			// Quit may be requested while a batch is being drained.
			if !e.running {
				break
			}
			if !e.HandleEvent(ev) {
				e.Quit()
				break
			}
		}
	}
	if e.err != nil {
		return e.err
	}
	e.logger.Info("engine stopped")
	return nil
}

// shutdown releases the renderer and then closes the window.
func (e *engine) shutdown() {
	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		e.logger.Warn("close window", zap.Error(err))
	}
}

func (e *engine) HandleEvent(ev window.Event) bool {
	switch ev := ev.(type) {
	case window.EventCloseRequested:
		e.logger.Debug("close requested")
		return false
	case window.EventKeyInput:
		if ev.Key == common.KeyEsc {
			if ev.Pressed {
				e.logger.Debug("escape pressed")
				return false
			}
			return true
		}
		e.controller.ProcessEvent(camera.KeyEvent{Key: ev.Key, Pressed: ev.Pressed})
	case window.EventFocusChanged:
		if !ev.Focused {
			e.controller.Release()
		}
	case window.EventResized:
		e.resize = pendingResize{width: ev.Width, height: ev.Height, set: true}
	case window.EventScaleFactorChanged:
		e.resize = pendingResize{width: ev.Width, height: ev.Height, set: true}
	case window.EventRedrawRequested:
		if err := e.frame(); err != nil {
			e.logger.Error("frame failed", zap.Error(err))
			e.err = err
			return false
		}
	}
	return true
}

// frame runs one tick: pending resize, camera step, uniform upload, render and profiling.
// A minimized window skips the tick. Lost surfaces are reconfigured and transient surface errors skip
// the frame; anything else is returned.
func (e *engine) frame() error {
	start := time.Now()

	if e.resize.set {
		e.renderer.Resize(e.resize.width, e.resize.height)
		e.state.SetAspect(e.resize.width, e.resize.height)
		e.resize = pendingResize{}
	}

	// A minimized window has no drawable surface; the driver reports it as outdated on every acquisition.
	if e.window.Width() <= 0 || e.window.Height() <= 0 {
		time.Sleep(minimizedPollInterval)
		return nil
	}

	e.controller.Tick(&e.state)
	e.uniform.Update(e.state)
	if err := e.renderer.WriteCamera(e.uniform); err != nil {
		return fmt.Errorf("write camera: %w", err)
	}

	if err := e.renderer.Render(); err != nil {
		switch {
		case errors.Is(err, renderer.ErrSurfaceLost):
			e.logger.Warn("surface lost, reconfiguring", zap.Error(err))
			e.renderer.Resize(e.window.Width(), e.window.Height())
		case renderer.IsTransient(err):
			e.logger.Warn("frame skipped", zap.Error(err))
		default:
			return fmt.Errorf("render frame: %w", err)
		}
	}

	if e.profilingEnabled && e.profiler.Tick() && e.title != "" {
		e.window.SetTitle(fmt.Sprintf("%s (%.0f FPS)", e.title, e.profiler.FPS()))
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Controller() camera.Controller {
	return e.controller
}

func (e *engine) CameraState() camera.State {
	return e.state
}

func (e *engine) Quit() {
	e.running = false
}

// frameDuration converts a frame rate cap into a minimum frame duration; 0 means uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
