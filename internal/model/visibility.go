package model

// VisibilityState is the state of the overlay window as seen by the hotkey controller.
type VisibilityState int

const (
	// Hidden means the window is not shown. This is the startup state.
	Hidden VisibilityState = iota
	// VisibleUnfocused means the window is shown but another window has input focus.
	VisibleUnfocused
	// VisibleFocused means the window is shown and has input focus.
	VisibleFocused
)

// String returns the string representation of the state.
func (s VisibilityState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case VisibleUnfocused:
		return "visible-unfocused"
	case VisibleFocused:
		return "visible-focused"
	default:
		return "unknown"
	}
}

// ObservedVisibility derives the state from raw window flags.
// A window that is not visible is Hidden regardless of the focus flag.
func ObservedVisibility(visible, focused bool) VisibilityState {
	switch {
	case !visible:
		return Hidden
	case focused:
		return VisibleFocused
	default:
		return VisibleUnfocused
	}
}

// NextVisibility returns the state a toggle moves to.
// Only a focused window is hidden; a hidden or unfocused window is brought
// to the front and focused.
func NextVisibility(current VisibilityState) VisibilityState {
	if current == VisibleFocused {
		return Hidden
	}
	return VisibleFocused
}
