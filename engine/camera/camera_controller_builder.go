package camera

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*controllerImpl)

// WithKeyBinding binds a key code to a control, replacing the control's default key.
// If the key was already bound to another control, that binding moves to this control.
// The Escape key cannot be bound; it is reserved for exiting.
//
// Parameters:
//   - c: the control to bind
//   - key: the virtual key code (see common.Key*)
//
// Returns:
//   - ControllerOption: functional option to set the binding
func WithKeyBinding(c Control, key uint32) ControllerOption {
	return func(cc *controllerImpl) {
		cc.bind(c, key)
	}
}

// WithKeyBindings applies several bindings at once, in Controls order. See WithKeyBinding.
//
// Parameters:
//   - bindings: key code per control
//
// Returns:
//   - ControllerOption: functional option to set the bindings
func WithKeyBindings(bindings map[Control]uint32) ControllerOption {
	return func(cc *controllerImpl) {
		for _, c := range Controls() {
			if key, ok := bindings[c]; ok {
				WithKeyBinding(c, key)(cc)
			}
		}
	}
}
