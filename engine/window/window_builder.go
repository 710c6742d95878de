package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithMaxSize sets the maximum allowed window size. Non-positive values leave the axis unconstrained.
//
// Parameters:
//   - maxWidth: maximum width in pixels
//   - maxHeight: maximum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = sizeLimit(maxWidth)
		w.maxHeight = sizeLimit(maxHeight)
	}
}

// WithMinSize sets the minimum allowed window size. Non-positive values leave the axis unconstrained.
//
// Parameters:
//   - minWidth: minimum width in pixels
//   - minHeight: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(minWidth, minHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = sizeLimit(minWidth)
		w.minHeight = sizeLimit(minHeight)
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if height > 0 {
			w.height = height
		}
	}
}

func sizeLimit(v int) int {
	if v <= 0 {
		return dontCare
	}
	return v
}
