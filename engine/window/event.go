package window

// Event is a window event delivered by Window.PollEvents.
// The concrete types are EventCloseRequested, EventKeyInput, EventResized,
// EventScaleFactorChanged, EventFocusChanged and EventRedrawRequested.
type Event interface {
	isEvent()
}

// EventCloseRequested is emitted when the user asks to close the window.
type EventCloseRequested struct{}

// EventKeyInput is emitted for key presses and releases. Auto-repeat is not reported.
type EventKeyInput struct {
	// Key is the platform key code (see common.Key*).
	Key uint32
	// Pressed is true for a press, false for a release.
	Pressed bool
}

// EventResized is emitted when the framebuffer size changes. Sizes are in pixels.
type EventResized struct {
	Width, Height int
}

// EventScaleFactorChanged is emitted when the window moves to a display with a different
// content scale. Width and Height carry the framebuffer size after the change.
type EventScaleFactorChanged struct {
	ScaleX, ScaleY float32
	Width, Height  int
}

// EventFocusChanged is emitted when the window gains or loses input focus.
type EventFocusChanged struct {
	Focused bool
}

// EventRedrawRequested is emitted once at the end of every PollEvents batch.
type EventRedrawRequested struct{}

func (EventCloseRequested) isEvent()     {}
func (EventKeyInput) isEvent()           {}
func (EventResized) isEvent()            {}
func (EventScaleFactorChanged) isEvent() {}
func (EventFocusChanged) isEvent()       {}
func (EventRedrawRequested) isEvent()    {}
