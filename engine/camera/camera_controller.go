package camera

// Control identifies one of the logical camera controls driven by a held key.
type Control int

const (
	// ControlRotateUp tilts the view upward (Theta increases).
	ControlRotateUp Control = iota

	// ControlRotateDown tilts the view downward (Theta decreases).
	ControlRotateDown

	// ControlRotateLeft turns the view left (Phi decreases).
	ControlRotateLeft

	// ControlRotateRight turns the view right (Phi increases).
	ControlRotateRight

	// ControlIncreaseFov narrows the field of view (zoom in).
	ControlIncreaseFov

	// ControlDecreaseFov widens the field of view (zoom out).
	// The name is kept for compatibility with existing key maps even though the angle grows.
	ControlDecreaseFov

	// ControlReset restores the start-up orientation and field of view.
	ControlReset

	// controlCount is the number of controls; keep last.
	controlCount
)

// Per-tick increments, in degrees. Ticks are fixed-step and not scaled by elapsed time.
const (
	// RotationStep is the angle added to Theta or Phi per tick while a rotate control is held.
	RotationStep float32 = 1.0
	// FovStep is the angle added to or removed from Fovy per tick while a fov control is held.
	FovStep float32 = 5.0
)

// String returns the configuration name of the control.
func (c Control) String() string {
	switch c {
	case ControlRotateUp:
		return "rotate_up"
	case ControlRotateDown:
		return "rotate_down"
	case ControlRotateLeft:
		return "rotate_left"
	case ControlRotateRight:
		return "rotate_right"
	case ControlIncreaseFov:
		return "increase_fov"
	case ControlDecreaseFov:
		return "decrease_fov"
	case ControlReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Controls returns every control in declaration order.
//
// Returns:
//   - []Control: all seven controls
func Controls() []Control {
	out := make([]Control, 0, controlCount)
	for c := ControlRotateUp; c < controlCount; c++ {
		out = append(out, c)
	}
	return out
}

// KeyEvent is a discrete key state change delivered by the window.
type KeyEvent struct {
	// Key is the virtual key code (see common.Key*).
	Key uint32
	// Pressed is true for a press and false for a release.
	Pressed bool
}

// Controller converts key press/release events into held-control flags and, once per tick,
// applies the held controls to a camera State.
//
// Flags change only in ProcessEvent; Tick only reads them.
type Controller interface {
	// ProcessEvent records a key state change if the key is bound to a control.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: true if the event was consumed, false if the key is not bound
	ProcessEvent(ev KeyEvent) bool

	// Tick applies one fixed step of every held control to the state.
	// Rotations and fov changes combine additively; a held reset overrides them all.
	// Fovy always ends within [FovMin, FovMax].
	//
	// Parameters:
	//   - s: the camera state to mutate in place
	Tick(s *State)

	// Held reports whether the given control is currently held.
	//
	// Parameters:
	//   - c: the control to query
	//
	// Returns:
	//   - bool: true if held
	Held(c Control) bool

	// Binding returns the key code bound to the given control.
	//
	// Parameters:
	//   - c: the control to query
	//
	// Returns:
	//   - uint32: the bound key code
	//   - bool: false if the control has no binding
	Binding(c Control) (uint32, bool)

	// Release clears every held flag. Used when the window loses focus and release events may never arrive.
	Release()
}
