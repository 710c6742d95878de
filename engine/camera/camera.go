package camera

// Field-of-view bounds and defaults, in degrees.
const (
	// FovMin is the narrowest vertical field of view the controller allows.
	FovMin float32 = 10.0
	// FovMax is the widest vertical field of view the controller allows.
	FovMax float32 = 85.0
	// DefaultFovy is the vertical field of view at start-up and after a reset.
	DefaultFovy float32 = 30.0
)

// State is the camera's orientation and lens. All angles are in degrees.
//
// Theta and Phi accumulate without wrapping: equivalent orientations (e.g. 0 and 360)
// are not folded together. Fovy is kept within [FovMin, FovMax] by the Controller.
// State carries no behaviour of its own beyond construction; it is owned by the host
// loop and mutated in place by Controller.Tick.
type State struct {
	// Theta is the vertical look rotation (positive looks up).
	Theta float32
	// Phi is the horizontal look rotation (positive turns right).
	Phi float32
	// Fovy is the vertical field of view.
	Fovy float32
	// Aspect is the viewport width / height ratio. Always positive.
	Aspect float32
}

// NewState creates a State looking straight ahead with the default field of view.
//
// Parameters:
//   - aspect: the initial viewport aspect ratio (width / height); non-positive values fall back to 1
//
// Returns:
//   - State: the initial camera state
func NewState(aspect float32) State {
	if aspect <= 0 {
		aspect = 1
	}
	return State{
		Theta:  0,
		Phi:    0,
		Fovy:   DefaultFovy,
		Aspect: aspect,
	}
}

// SetAspect updates Aspect from a viewport size in pixels.
// Degenerate sizes (zero or negative on either axis) are ignored, matching the renderer's resize guard.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - bool: true if the aspect ratio was updated
func (s *State) SetAspect(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	s.Aspect = float32(width) / float32(height)
	return true
}

// resetOrientation restores the start-up orientation and field of view. Aspect is untouched.
func (s *State) resetOrientation() {
	s.Theta = 0
	s.Phi = 0
	s.Fovy = DefaultFovy
}
