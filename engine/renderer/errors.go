package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// Frame errors returned by Render. Lost is recovered by Resize, Outdated and Timeout are
// transient and the next frame may succeed, OutOfMemory and DeviceLost are fatal.
var (
	ErrSurfaceLost        = errors.New("surface lost")
	ErrSurfaceOutdated    = errors.New("surface outdated")
	ErrSurfaceTimeout     = errors.New("surface texture acquisition timed out")
	ErrSurfaceOutOfMemory = errors.New("surface out of memory")
	ErrDeviceLost         = errors.New("GPU device lost")
)

// Initialization errors returned by Init. Any of them leaves the renderer in StateFatal.
var (
	ErrNoAdapter          = errors.New("no compatible GPU adapter")
	ErrNoDevice           = errors.New("GPU device request failed")
	ErrShaderCompile      = errors.New("shader compilation failed")
	ErrPipeline           = errors.New("render pipeline creation failed")
	ErrAlreadyInitialized = errors.New("renderer already initialized")
)

// ErrNotReady is returned by Render before Init has succeeded or after a fatal error.
var ErrNotReady = errors.New("renderer not ready")

// surfaceStatusErrors maps the status names wgpu reports for a failed texture acquisition to the sentinels above.
// Matched in order: "device-lost" must be checked before the bare "lost".
// cogentcore spells statuses in kebab case (SurfaceGetCurrentTextureStatus.String).
var surfaceStatusErrors = []struct {
	status string
	err    error
}{
	{"device-lost", ErrDeviceLost},
	{"device lost", ErrDeviceLost},
	{"out-of-memory", ErrSurfaceOutOfMemory},
	{"outofmemory", ErrSurfaceOutOfMemory},
	{"out of memory", ErrSurfaceOutOfMemory},
	{"outdated", ErrSurfaceOutdated},
	{"timeout", ErrSurfaceTimeout},
	{"timed out", ErrSurfaceTimeout},
	{"lost", ErrSurfaceLost},
}

// classifySurfaceError wraps a surface acquisition error with the matching frame error sentinel.
// Errors that already wrap a sentinel are returned unchanged; unrecognised errors are returned as-is.
//
// Parameters:
//   - err: the error returned while acquiring or presenting the swapchain texture
//
// Returns:
//   - error: the classified error, or nil if err is nil
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, ErrSurfaceOutOfMemory, ErrDeviceLost} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	msg := strings.ToLower(err.Error())
	for _, s := range surfaceStatusErrors {
		if strings.Contains(msg, s.status) {
			return fmt.Errorf("%w: %v", s.err, err)
		}
	}
	return err
}

// IsTransient reports whether a Render error only affects the current frame.
//
// Parameters:
//   - err: the error returned by Render
//
// Returns:
//   - bool: true for ErrSurfaceOutdated and ErrSurfaceTimeout
func IsTransient(err error) bool {
	return errors.Is(err, ErrSurfaceOutdated) || errors.Is(err, ErrSurfaceTimeout)
}
