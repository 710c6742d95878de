package camera

import (
	"github.com/Carmen-Shannon/oxy-pano/common"
)

// controllerImpl is the implementation of the Controller interface.
// It is owned by the host loop and not safe for concurrent use.
type controllerImpl struct {
	// bindings maps a key code to the control it drives.
	bindings map[uint32]Control

	// held is the current pressed state of each control.
	held [controlCount]bool
}

var _ Controller = &controllerImpl{}

// DefaultBindings returns the default key map: arrow keys rotate, '=' zooms in, '-' zooms out, 'R' resets.
//
// Returns:
//   - map[Control]uint32: key code per control
func DefaultBindings() map[Control]uint32 {
	return map[Control]uint32{
		ControlRotateUp:    common.KeyUp,
		ControlRotateDown:  common.KeyDown,
		ControlRotateLeft:  common.KeyLeft,
		ControlRotateRight: common.KeyRight,
		ControlIncreaseFov: common.KeyEqual,
		ControlDecreaseFov: common.KeyMinus,
		ControlReset:       common.KeyR,
	}
}

// NewController creates a Controller with every flag released and the default key map,
// then applies the given options in order.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerOption) Controller {
	cc := &controllerImpl{
		bindings: make(map[uint32]Control, controlCount),
	}
	for c, key := range DefaultBindings() {
		cc.bind(c, key)
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *controllerImpl) ProcessEvent(ev KeyEvent) bool {
	c, ok := cc.bindings[ev.Key]
	if !ok {
		return false
	}
	cc.held[c] = ev.Pressed
	return true
}

func (cc *controllerImpl) Tick(s *State) {
	if cc.held[ControlRotateUp] {
		s.Theta += RotationStep
	}
	if cc.held[ControlRotateDown] {
		s.Theta -= RotationStep
	}
	if cc.held[ControlRotateLeft] {
		s.Phi -= RotationStep
	}
	if cc.held[ControlRotateRight] {
		s.Phi += RotationStep
	}
	if cc.held[ControlDecreaseFov] && s.Fovy <= FovMax {
		s.Fovy += FovStep
	}
	if cc.held[ControlIncreaseFov] && s.Fovy >= FovMin {
		s.Fovy -= FovStep
	}
	s.Fovy = min(max(s.Fovy, FovMin), FovMax)

	if cc.held[ControlReset] {
		s.resetOrientation()
	}
}

func (cc *controllerImpl) Held(c Control) bool {
	if c < 0 || c >= controlCount {
		return false
	}
	return cc.held[c]
}

func (cc *controllerImpl) Binding(c Control) (uint32, bool) {
	for key, bound := range cc.bindings {
		if bound == c {
			return key, true
		}
	}
	return 0, false
}

func (cc *controllerImpl) Release() {
	cc.held = [controlCount]bool{}
}

// bind maps key to control c, replacing any previous key for c and any previous control for key.
// Escape is reserved for the host loop and is never bound.
func (cc *controllerImpl) bind(c Control, key uint32) {
	if c < 0 || c >= controlCount || key == common.KeyEsc {
		return
	}
	for k, bound := range cc.bindings {
		if bound == c {
			delete(cc.bindings, k)
		}
	}
	cc.bindings[key] = c
}
