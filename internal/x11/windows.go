package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowInfo is the raw per-window snapshot produced by ListWindows.
type WindowInfo struct {
	ID     uint32
	Title  string
	Class  string
	PID    int
	X      int
	Y      int
	Width  int
	Height int

	Visible      bool
	Minimized    bool
	Maximized    bool
	OtherDesktop bool // window lives on a virtual desktop other than the current one
}

// ListWindows returns a snapshot of every top-level client window known to
// the window manager, including iconified windows and windows parked on
// other virtual desktops.
func (c *Connection) ListWindows() ([]WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)
	hasCurrentDesktop := desktopErr == nil

	windows := make([]WindowInfo, 0, len(clients))
	for _, windowID := range clients {
		if !c.IsNormalWindow(windowID) {
			continue
		}

		info := WindowInfo{
			ID:    uint32(windowID),
			Title: c.windowTitle(windowID),
			Class: c.windowClass(windowID),
		}

		if p, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
			info.PID = int(p)
		}

		if hasCurrentDesktop {
			if desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID); err == nil {
				if desktop != 0xFFFFFFFF && desktop != currentDesktop {
					info.OtherDesktop = true
				}
			}
		}

		info.Visible = c.isViewable(windowID)
		for _, state := range c.windowStates(windowID) {
			switch state {
			case "_NET_WM_STATE_HIDDEN":
				info.Minimized = true
			case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
				info.Maximized = true
			}
		}
		// Iconified windows are unmapped but still actionable.
		if info.Minimized {
			info.Visible = false
		}

		if rect, ok := c.windowRect(windowID); ok {
			info.X, info.Y = rect[0], rect[1]
			info.Width, info.Height = rect[2], rect[3]
		}

		windows = append(windows, info)
	}

	return windows, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" ||
			t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore move requests until unmaximized.
	c.unmaximizeWindow(windowID)

	win := xwindow.New(c.XUtil, windowID)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
	if err != nil {
		// Fallback to direct window manipulation
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// RestoreWindow de-iconifies a window by mapping it and clearing the EWMH
// hidden state.
func (c *Connection) RestoreWindow(windowID xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return err
	}
	// Best effort; some WMs clear this on map automatically.
	ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_HIDDEN")
	return nil
}

// ShowWindow maps an unmapped window.
func (c *Connection) ShowWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// HideWindow unmaps a window (reverse of ShowWindow).
func (c *Connection) HideWindow(windowID xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, windowID, 0, state)
		}
	}
}

func (c *Connection) windowStates(windowID xproto.Window) []string {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}
	return states
}

func (c *Connection) isViewable(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

func (c *Connection) windowRect(windowID xproto.Window) ([4]int, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return [4]int{}, false
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return [4]int{}, false
	}

	return [4]int{
		int(translate.DstX),
		int(translate.DstY),
		int(geom.Width),
		int(geom.Height),
	}, true
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}
