package platform

// Handle is a platform-neutral window identifier.
type Handle uint64

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Intersects reports whether r and o share any area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

// CloakMask is the compositor cloak bitmask for a window. Zero means the
// window is not cloaked. On Windows these are the DWM cloak bits; on X11 a
// window parked on another virtual desktop is reported as app-cloaked.
type CloakMask int

const (
	CloakApp       CloakMask = 1
	CloakShell     CloakMask = 2
	CloakInherited CloakMask = 4
)

// OSInitiated reports whether the cloak was applied by the shell or inherited
// from an ancestor rather than requested by the application itself.
func (m CloakMask) OSInitiated() bool {
	return m&(CloakShell|CloakInherited) != 0
}

// State is the derived visibility classification of a window. Exactly one
// state applies per window; precedence is minimized > hidden > cloaked >
// off-screen > maximized > normal.
type State string

const (
	StateNormal    State = "normal"
	StateMinimized State = "minimized"
	StateMaximized State = "maximized"
	StateHidden    State = "hidden"
	StateCloaked   State = "cloaked"
	StateOffScreen State = "off-screen"
)

// Window is the raw snapshot of a top-level window as discovered by a
// backend. It carries no derived or policy fields; classification and
// scoring happen downstream.
type Window struct {
	Handle  Handle
	PID     int
	Process string
	ExePath string // resolved executable path; empty when unavailable
	Title   string
	Class   string
	Bounds  Rect

	Visible   bool
	Minimized bool
	Maximized bool
	Cloak     CloakMask
}

// Monitor describes a physical display and its usable work area.
type Monitor struct {
	Bounds  Rect
	Work    Rect
	Primary bool
}

// Backend abstracts window-system operations across platforms. Implementations
// are selected once at startup; all operations act on window handles from a
// prior Enumerate call and report per-window failure via error.
type Backend interface {
	// Enumerate returns a snapshot of every qualifying top-level window.
	// When includeHidden is false, non-visible windows other than minimized
	// ones are omitted.
	Enumerate(includeHidden bool) ([]Window, error)

	Monitors() ([]Monitor, error)
	// WorkArea returns the work area of the monitor at index, falling back
	// to the primary monitor when the index is out of range.
	WorkArea(index int) (Rect, error)
	PrimaryWorkArea() (Rect, error)

	Restore(Handle) error
	Show(Handle) error
	Hide(Handle) error
	MoveResize(Handle, Rect) error
	Raise(Handle) error
	// PullToCurrentDesktop moves a window from another virtual desktop to
	// the one currently displayed.
	PullToCurrentDesktop(Handle) error

	// Elevated reports whether the process runs with the privileges needed
	// to manipulate windows of elevated processes.
	Elevated() bool
}
