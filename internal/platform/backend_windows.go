//go:build windows

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"

	"github.com/dazzletools/wingather/internal/win32"
)

// WindowsBackend implements Backend over Win32 and DWM. Cloak bits come
// straight from DWMWA_CLOAKED; virtual desktop moves go through the
// documented IVirtualDesktopManager COM interface.
type WindowsBackend struct {
	ownPID int
	vdm    *win32.VirtualDesktopManager
}

var _ Backend = (*WindowsBackend)(nil)

// New initializes DPI awareness and returns the Windows backend.
func New() (Backend, error) {
	win32.SetDPIAware()
	return &WindowsBackend{ownPID: os.Getpid()}, nil
}

// System/shell window classes that are never interesting to inspect.
var systemClasses = map[string]bool{
	"Progman":                    true, // desktop (Program Manager)
	"Shell_TrayWnd":              true, // taskbar
	"Shell_SecondaryTrayWnd":     true,
	"NotifyIconOverflowWindow":   true,
	"Windows.UI.Core.CoreWindow": true, // Start menu, Action Center, etc.
	"WorkerW":                    true,
	"DV2ControlHost":             true,
	"SHELLDLL_DefView":           true,
	"tooltips_class32":           true,
	"IME":                        true,
	"MSCTFIME UI":                true,
	"EdgeUiInputTopWndClass":     true,
	"EdgeUiInputWndClass":        true,
}

func (b *WindowsBackend) Enumerate(includeHidden bool) ([]Window, error) {
	handles, err := win32.EnumTopLevelWindows()
	if err != nil {
		return nil, fmt.Errorf("window enumeration failed: %w", err)
	}

	windows := make([]Window, 0, len(handles))
	for _, hwnd := range handles {
		if win, ok := b.inspect(hwnd, includeHidden); ok {
			windows = append(windows, win)
		}
	}
	return windows, nil
}

func (b *WindowsBackend) inspect(hwnd win32.HWND, includeHidden bool) (Window, bool) {
	class := win32.ClassName(hwnd)
	if systemClasses[class] {
		return Window{}, false
	}

	style := win32.WindowStyle(hwnd)
	exStyle := win32.WindowExStyle(hwnd)
	if style&win32.WSChild != 0 {
		return Window{}, false
	}

	title := win32.WindowText(hwnd)
	if exStyle&win32.WSExToolWindow != 0 && title == "" {
		return Window{}, false
	}

	visible := win32.IsWindowVisible(hwnd)
	minimized := style&win32.WSMinimize != 0
	if !visible && !includeHidden && !minimized {
		return Window{}, false
	}
	if title == "" && !visible {
		return Window{}, false
	}

	pid := win32.WindowPID(hwnd)
	if pid == 0 || pid == b.ownPID {
		return Window{}, false
	}

	x, y, w, h := win32.WindowRect(hwnd)

	win := Window{
		Handle:    Handle(hwnd),
		PID:       pid,
		Title:     title,
		Class:     class,
		Bounds:    Rect{X: x, Y: y, Width: w, Height: h},
		Visible:   visible,
		Minimized: minimized,
		Maximized: style&win32.WSMaximize != 0,
		Cloak:     CloakMask(win32.CloakedValue(hwnd)),
	}
	win.Process, win.ExePath = win32.ProcessIdentity(pid)
	if win.Title == "" {
		win.Title = "<" + class + ">"
	}
	return win, true
}

func (b *WindowsBackend) Monitors() ([]Monitor, error) {
	mons, err := win32.EnumMonitors()
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

func (b *WindowsBackend) WorkArea(index int) (Rect, error) {
	mons, err := b.Monitors()
	if err != nil {
		return Rect{}, err
	}
	if index >= 0 && index < len(mons) {
		return mons[index].Work, nil
	}
	return b.PrimaryWorkArea()
}

func (b *WindowsBackend) PrimaryWorkArea() (Rect, error) {
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

func (b *WindowsBackend) Restore(h Handle) error {
	return win32.ShowWindowCmd(win32.HWND(h), win32.SWRestore)
}

func (b *WindowsBackend) Show(h Handle) error {
	return win32.ShowWindowCmd(win32.HWND(h), win32.SWShow)
}

func (b *WindowsBackend) Hide(h Handle) error {
	return win32.ShowWindowCmd(win32.HWND(h), win32.SWHide)
}

func (b *WindowsBackend) MoveResize(h Handle, bounds Rect) error {
	return win32.SetWindowPos(win32.HWND(h), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *WindowsBackend) Raise(h Handle) error {
	return win32.BringToFront(win32.HWND(h))
}

func (b *WindowsBackend) PullToCurrentDesktop(h Handle) error {
	if b.vdm == nil {
		vdm, err := win32.NewVirtualDesktopManager()
		if err != nil {
			return fmt.Errorf("virtual desktop interface unavailable: %w", err)
		}
		b.vdm = vdm
	}
	return b.vdm.MoveToCurrentDesktop(win32.HWND(h))
}

func (b *WindowsBackend) Elevated() bool {
	var token windows.Token = windows.GetCurrentProcessToken()
	return token.IsElevated()
}
