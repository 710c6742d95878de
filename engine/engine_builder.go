package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithLogger sets the logger used by the loop and the profiler. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the logger; nil keeps the default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithController replaces the default camera controller, e.g. one built with custom key bindings.
//
// Parameters:
//   - c: the controller to receive key input
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithController(c camera.Controller) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithProfilerInterval sets how often profiling stats are reported. Non-positive values keep the 1 second default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilerInterval = d
	}
}

// WithTitle sets the base window title. While profiling is enabled the measured frame rate is
// appended to it after every report.
//
// Parameters:
//   - title: the base title
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.title = title
	}
}
