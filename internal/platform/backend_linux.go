//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/dazzletools/wingather/internal/x11"
)

// LinuxBackend implements Backend over an X11 connection. Windows parked on
// another virtual desktop are reported as app-cloaked; X11 has no analogue
// of shell cloaking.
type LinuxBackend struct {
	conn   *x11.Connection
	ownPID int
}

var _ Backend = (*LinuxBackend)(nil)

// New opens an X11 connection and returns the Linux backend.
func New() (Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn, ownPID: os.Getpid()}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

func (b *LinuxBackend) Enumerate(includeHidden bool) ([]Window, error) {
	infos, err := b.conn.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	windows := make([]Window, 0, len(infos))
	for _, info := range infos {
		if info.PID == b.ownPID && info.PID != 0 {
			continue
		}
		if !includeHidden && !info.Visible && !info.Minimized {
			continue
		}
		// Untitled, unmapped windows are background plumbing.
		if info.Title == "" && !info.Visible {
			continue
		}

		win := Window{
			Handle:    Handle(info.ID),
			PID:       info.PID,
			Title:     info.Title,
			Class:     info.Class,
			Bounds:    Rect{X: info.X, Y: info.Y, Width: info.Width, Height: info.Height},
			Visible:   info.Visible,
			Minimized: info.Minimized,
			Maximized: info.Maximized,
		}
		if info.OtherDesktop {
			win.Cloak = CloakApp
		}
		win.Process, win.ExePath = processIdentity(info.PID)
		if win.Title == "" {
			win.Title = "<" + win.Class + ">"
		}
		windows = append(windows, win)
	}

	return windows, nil
}

func (b *LinuxBackend) Monitors() ([]Monitor, error) {
	mons, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	out := make([]Monitor, 0, len(mons))
	for _, m := range mons {
		out = append(out, Monitor{
			Bounds:  Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Work:    Rect{X: m.WorkX, Y: m.WorkY, Width: m.WorkWidth, Height: m.WorkHeight},
			Primary: m.Primary,
		})
	}
	return out, nil
}

func (b *LinuxBackend) WorkArea(index int) (Rect, error) {
	mons, err := b.Monitors()
	if err != nil {
		return Rect{}, err
	}
	if index >= 0 && index < len(mons) {
		return mons[index].Work, nil
	}
	return b.PrimaryWorkArea()
}

func (b *LinuxBackend) PrimaryWorkArea() (Rect, error) {
	mons, err := b.Monitors()
	if err != nil {
		return Rect{}, err
	}
	if len(mons) == 0 {
		return Rect{}, fmt.Errorf("no monitors found")
	}
	for _, m := range mons {
		if m.Primary {
			return m.Work, nil
		}
	}
	return mons[0].Work, nil
}

func (b *LinuxBackend) Restore(h Handle) error {
	return b.conn.RestoreWindow(xproto.Window(h))
}

func (b *LinuxBackend) Show(h Handle) error {
	return b.conn.ShowWindow(xproto.Window(h))
}

func (b *LinuxBackend) Hide(h Handle) error {
	return b.conn.HideWindow(xproto.Window(h))
}

func (b *LinuxBackend) MoveResize(h Handle, bounds Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(h), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) Raise(h Handle) error {
	return b.conn.FocusWindow(uint32(h))
}

func (b *LinuxBackend) PullToCurrentDesktop(h Handle) error {
	current, err := b.conn.GetCurrentDesktop()
	if err != nil {
		return err
	}
	return b.conn.SetWindowDesktop(uint32(h), current)
}

// Elevated always reports true on X11: any client of the display can
// manipulate any other client's windows.
func (b *LinuxBackend) Elevated() bool {
	return true
}

// processIdentity resolves a PID to a process name and executable path via
// procfs. Either result may be empty when the process is gone or owned by
// another user.
func processIdentity(pid int) (name string, exePath string) {
	if pid <= 0 {
		return "", ""
	}
	if target, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
		exePath = target
		name = filepath.Base(target)
	}
	if name == "" {
		if data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid)); err == nil {
			name = strings.TrimSpace(string(data))
		}
	}
	if name == "" {
		name = fmt.Sprintf("<pid:%d>", pid)
	}
	return name, exePath
}
