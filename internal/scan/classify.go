package scan

import "github.com/dazzletools/wingather/internal/platform"

// Classify assigns exactly one state to a window. Precedence, first match
// wins: minimized > hidden > cloaked > off-screen > maximized > normal.
// The returned offScreen flag reports the geometry independently, so a
// cloaked window parked outside every monitor still credits the off-screen
// indicator downstream.
func Classify(w platform.Window, monitors []platform.Monitor) (platform.State, bool) {
	off := isOffScreen(w.Bounds, monitors)

	switch {
	case w.Minimized:
		return platform.StateMinimized, off
	case !w.Visible:
		return platform.StateHidden, off
	case w.Cloak != 0:
		return platform.StateCloaked, off
	case off:
		return platform.StateOffScreen, true
	case w.Maximized:
		return platform.StateMaximized, false
	default:
		return platform.StateNormal, false
	}
}

// isOffScreen reports whether the rectangle misses every monitor entirely.
// Degenerate geometry counts as off-screen.
func isOffScreen(b platform.Rect, monitors []platform.Monitor) bool {
	if b.Width <= 0 || b.Height <= 0 {
		return true
	}
	for _, m := range monitors {
		if b.Intersects(m.Bounds) {
			return false
		}
	}
	return true
}
