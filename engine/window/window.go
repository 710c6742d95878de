package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// dontCare leaves a size limit unconstrained (glfw.DontCare).
const dontCare = -1

// Window provides a platform window and its input events.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// PollEvents processes pending platform events without blocking and returns them in arrival
	// order, followed by one EventRedrawRequested. Once the window has stopped running the batch
	// is a single EventCloseRequested.
	//
	// Returns:
	//   - []Event: the events of this loop iteration
	PollEvents() []Event

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and the pending event queue.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// events queues platform callbacks until the next PollEvents.
	events []Event
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-pano",
		maxWidth:  dontCare,
		maxHeight: dontCare,
		minWidth:  320,
		minHeight: 180,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// push queues an event for the next PollEvents.
func (w *engineWindow) push(ev Event) {
	w.events = append(w.events, ev)
}

// drain returns the queued events followed by a redraw request and empties the queue.
func (w *engineWindow) drain() []Event {
	batch := append(w.events, EventRedrawRequested{})
	w.events = nil
	return batch
}

func (w *engineWindow) PollEvents() []Event {
	if !platformProcessMessages(w) {
		w.events = nil
		return []Event{EventCloseRequested{}}
	}
	return w.drain()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
