package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pano/common"
)

func press(t *testing.T, cc Controller, c Control) {
	t.Helper()
	key, ok := cc.Binding(c)
	if !ok {
		t.Fatalf("control %s has no binding", c)
	}
	if !cc.ProcessEvent(KeyEvent{Key: key, Pressed: true}) {
		t.Fatalf("press of %s not consumed", c)
	}
}

func release(t *testing.T, cc Controller, c Control) {
	t.Helper()
	key, _ := cc.Binding(c)
	if !cc.ProcessEvent(KeyEvent{Key: key, Pressed: false}) {
		t.Fatalf("release of %s not consumed", c)
	}
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState(16.0 / 9.0)
	if s.Theta != 0 || s.Phi != 0 || s.Fovy != DefaultFovy {
		t.Errorf("NewState = %+v, want theta=0 phi=0 fovy=%v", s, DefaultFovy)
	}
	if s.Aspect != 16.0/9.0 {
		t.Errorf("Aspect = %v, want %v", s.Aspect, float32(16.0/9.0))
	}
	if got := NewState(0).Aspect; got != 1 {
		t.Errorf("NewState(0).Aspect = %v, want 1", got)
	}
}

func TestStateSetAspect(t *testing.T) {
	s := NewState(1)
	if !s.SetAspect(1280, 720) {
		t.Fatal("SetAspect(1280, 720) rejected")
	}
	if s.Aspect != float32(1280)/float32(720) {
		t.Errorf("Aspect = %v", s.Aspect)
	}
	before := s.Aspect
	for _, size := range [][2]int{{0, 720}, {1280, 0}, {-1, 10}} {
		if s.SetAspect(size[0], size[1]) {
			t.Errorf("SetAspect(%d, %d) accepted a degenerate size", size[0], size[1])
		}
	}
	if s.Aspect != before {
		t.Errorf("Aspect changed to %v after degenerate sizes", s.Aspect)
	}
}

func TestProcessEvent(t *testing.T) {
	cc := NewController()

	if cc.ProcessEvent(KeyEvent{Key: common.KeyW, Pressed: true}) {
		t.Error("unbound key W was consumed")
	}
	if cc.ProcessEvent(KeyEvent{Key: common.KeyEsc, Pressed: true}) {
		t.Error("Escape must be left to the host loop")
	}

	for _, c := range Controls() {
		press(t, cc, c)
		if !cc.Held(c) {
			t.Errorf("%s not held after press", c)
		}
		release(t, cc, c)
		if cc.Held(c) {
			t.Errorf("%s still held after release", c)
		}
	}
}

func TestProcessEventDoesNotTouchState(t *testing.T) {
	cc := NewController()
	s := NewState(1)
	press(t, cc, ControlRotateUp)
	if s != NewState(1) {
		t.Errorf("state changed by ProcessEvent: %+v", s)
	}
}

func TestTickRotation(t *testing.T) {
	tests := []struct {
		control   Control
		wantTheta float32
		wantPhi   float32
	}{
		{ControlRotateUp, 1, 0},
		{ControlRotateDown, -1, 0},
		{ControlRotateLeft, 0, -1},
		{ControlRotateRight, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.control.String(), func(t *testing.T) {
			cc := NewController()
			s := NewState(1)
			press(t, cc, tt.control)
			cc.Tick(&s)
			if s.Theta != tt.wantTheta || s.Phi != tt.wantPhi || s.Fovy != DefaultFovy {
				t.Errorf("after tick: %+v, want theta=%v phi=%v fovy=%v", s, tt.wantTheta, tt.wantPhi, DefaultFovy)
			}
		})
	}
}

func TestTickRotationAccumulates(t *testing.T) {
	cc := NewController()
	s := NewState(1)
	press(t, cc, ControlRotateRight)

	const n = 1000
	for i := 0; i < n; i++ {
		cc.Tick(&s)
	}
	if s.Phi != n*RotationStep {
		t.Errorf("Phi = %v after %d ticks, want %v (no wrap-around)", s.Phi, n, n*RotationStep)
	}
	if s.Theta != 0 {
		t.Errorf("Theta = %v, want 0", s.Theta)
	}
}

func TestTickOpposingRotationsCancel(t *testing.T) {
	cc := NewController()
	s := NewState(1)
	press(t, cc, ControlRotateUp)
	press(t, cc, ControlRotateDown)
	press(t, cc, ControlRotateLeft)
	press(t, cc, ControlRotateRight)
	cc.Tick(&s)
	if s.Theta != 0 || s.Phi != 0 {
		t.Errorf("opposing controls did not cancel: %+v", s)
	}
}

func TestTickFovClamping(t *testing.T) {
	tests := []struct {
		name    string
		control Control
		start   float32
		want    float32
	}{
		{"zoom in from default", ControlIncreaseFov, 30, 25},
		{"zoom out from default", ControlDecreaseFov, 30, 35},
		{"zoom in at floor", ControlIncreaseFov, FovMin, FovMin},
		{"zoom out at ceiling", ControlDecreaseFov, FovMax, FovMax},
		{"zoom in near floor", ControlIncreaseFov, 12, FovMin},
		{"zoom out near ceiling", ControlDecreaseFov, 83, FovMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := NewController()
			s := NewState(1)
			s.Fovy = tt.start
			press(t, cc, tt.control)
			cc.Tick(&s)
			if s.Fovy != tt.want {
				t.Errorf("Fovy = %v, want %v", s.Fovy, tt.want)
			}
		})
	}
}

func TestTickFovAlwaysInBounds(t *testing.T) {
	cc := NewController()
	s := NewState(1)

	// Deterministic pseudo-random hold pattern over both fov controls.
	seed := uint32(12345)
	for i := 0; i < 500; i++ {
		seed = seed*1664525 + 1013904223
		if seed&1 == 0 {
			press(t, cc, ControlIncreaseFov)
		} else {
			release(t, cc, ControlIncreaseFov)
		}
		if seed&2 == 0 {
			press(t, cc, ControlDecreaseFov)
		} else {
			release(t, cc, ControlDecreaseFov)
		}
		cc.Tick(&s)
		if s.Fovy < FovMin || s.Fovy > FovMax {
			t.Fatalf("tick %d: Fovy = %v out of [%v, %v]", i, s.Fovy, FovMin, FovMax)
		}
	}
}

func TestTickResetWins(t *testing.T) {
	cc := NewController()
	s := State{Theta: 42, Phi: -370, Fovy: 60, Aspect: 2}
	for _, c := range Controls() {
		press(t, cc, c)
	}
	cc.Tick(&s)

	want := State{Theta: 0, Phi: 0, Fovy: DefaultFovy, Aspect: 2}
	if s != want {
		t.Errorf("after reset tick: %+v, want %+v", s, want)
	}
}

func TestTickWithoutHeldControls(t *testing.T) {
	cc := NewController()
	s := State{Theta: 5, Phi: 6, Fovy: 40, Aspect: 1.5}
	before := s
	cc.Tick(&s)
	if s != before {
		t.Errorf("idle tick changed state: %+v -> %+v", before, s)
	}
}

func TestRelease(t *testing.T) {
	cc := NewController()
	for _, c := range Controls() {
		press(t, cc, c)
	}
	cc.Release()
	for _, c := range Controls() {
		if cc.Held(c) {
			t.Errorf("%s still held after Release", c)
		}
	}
}

func TestWithKeyBinding(t *testing.T) {
	cc := NewController(
		WithKeyBinding(ControlRotateUp, common.KeyW),
		WithKeyBinding(ControlReset, common.KeyEsc),
	)

	if key, _ := cc.Binding(ControlRotateUp); key != common.KeyW {
		t.Errorf("RotateUp bound to %d, want W", key)
	}
	if cc.ProcessEvent(KeyEvent{Key: common.KeyUp, Pressed: true}) {
		t.Error("old Up binding still consumed")
	}
	if !cc.ProcessEvent(KeyEvent{Key: common.KeyW, Pressed: true}) || !cc.Held(ControlRotateUp) {
		t.Error("W did not drive RotateUp")
	}
	if key, _ := cc.Binding(ControlReset); key != common.KeyR {
		t.Errorf("Escape must not be bindable; reset bound to %d", key)
	}
}

func TestWithKeyBindingsSwap(t *testing.T) {
	cc := NewController(WithKeyBindings(map[Control]uint32{
		ControlRotateUp:   common.KeyDown,
		ControlRotateDown: common.KeyUp,
	}))

	if key, _ := cc.Binding(ControlRotateUp); key != common.KeyDown {
		t.Errorf("RotateUp bound to %d, want Down", key)
	}
	if key, _ := cc.Binding(ControlRotateDown); key != common.KeyUp {
		t.Errorf("RotateDown bound to %d, want Up", key)
	}
}

func TestWithKeyBindingsSharedKeyIsDeterministic(t *testing.T) {
	bindings := map[Control]uint32{
		ControlRotateUp:   common.KeyW,
		ControlRotateDown: common.KeyW,
		ControlReset:      common.KeyW,
	}
	for i := 0; i < 50; i++ {
		cc := NewController(WithKeyBindings(bindings))
		if key, ok := cc.Binding(ControlReset); !ok || key != common.KeyW {
			t.Fatalf("run %d: reset bound to %d (%v), want W", i, key, ok)
		}
		for _, c := range []Control{ControlRotateUp, ControlRotateDown} {
			if key, ok := cc.Binding(c); ok {
				t.Fatalf("run %d: %s still bound to %d", i, c, key)
			}
		}
	}
}
