package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR     = 82  // R key (ASCII)
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyEqual = 61  // = key (ASCII)
	KeyMinus = 45  // - key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

// Navigation keys
const (
	KeyRight    = 262 // Right arrow (GLFW)
	KeyLeft     = 263 // Left arrow (GLFW)
	KeyDown     = 264 // Down arrow (GLFW)
	KeyUp       = 265 // Up arrow (GLFW)
	KeyPageUp   = 266 // Page Up (GLFW)
	KeyPageDown = 267 // Page Down (GLFW)
	KeyHome     = 268 // Home (GLFW)
)

// Keypad keys
const (
	KeyKPSubtract = 333 // Keypad - (GLFW)
	KeyKPAdd      = 334 // Keypad + (GLFW)
)

// keyNames maps the configuration spelling of a key to its code.
var keyNames = map[string]uint32{
	"r":           KeyR,
	"w":           KeyW,
	"a":           KeyA,
	"s":           KeyS,
	"d":           KeyD,
	"equal":       KeyEqual,
	"minus":       KeyMinus,
	"space":       KeySpace,
	"escape":      KeyEsc,
	"right":       KeyRight,
	"left":        KeyLeft,
	"down":        KeyDown,
	"up":          KeyUp,
	"page_up":     KeyPageUp,
	"page_down":   KeyPageDown,
	"home":        KeyHome,
	"kp_subtract": KeyKPSubtract,
	"kp_add":      KeyKPAdd,
}

// KeyFromName resolves a lower-case key name (as written in configuration files) to its key code.
//
// Parameters:
//   - name: the key name, e.g. "up", "page_down", "r"
//
// Returns:
//   - uint32: the key code
//   - bool: false if the name is unknown
func KeyFromName(name string) (uint32, bool) {
	code, ok := keyNames[name]
	return code, ok
}
