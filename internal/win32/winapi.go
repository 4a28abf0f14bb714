//go:build windows

// Package win32 wraps the raw user32/dwmapi calls the Windows backend needs.
package win32

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// HWND is a raw Win32 window handle.
type HWND uintptr

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	procEnumWindows                   = user32.NewProc("EnumWindows")
	procGetClassNameW                 = user32.NewProc("GetClassNameW")
	procGetWindowTextW                = user32.NewProc("GetWindowTextW")
	procGetWindowLongW                = user32.NewProc("GetWindowLongW")
	procIsWindowVisible               = user32.NewProc("IsWindowVisible")
	procGetWindowRect                 = user32.NewProc("GetWindowRect")
	procGetWindowThreadProcessId      = user32.NewProc("GetWindowThreadProcessId")
	procShowWindow                    = user32.NewProc("ShowWindow")
	procSetWindowPos                  = user32.NewProc("SetWindowPos")
	procSetForegroundWindow           = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop              = user32.NewProc("BringWindowToTop")
	procEnumDisplayMonitors           = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW               = user32.NewProc("GetMonitorInfoW")
	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")

	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
)

// Window style bits and ShowWindow commands used by the backend.
const (
	gwlStyle   int32 = -16
	gwlExStyle int32 = -20

	WSChild    = 0x40000000
	WSMinimize = 0x20000000
	WSMaximize = 0x01000000

	WSExToolWindow = 0x00000080

	SWHide    = 0
	SWShow    = 5
	SWRestore = 9

	swpShowWindow = 0x0040

	dwmwaCloaked = 14
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfo struct {
	Size    uint32
	Monitor rect
	Work    rect
	Flags   uint32
}

// SetDPIAware opts into per-monitor DPI awareness so window coordinates are
// reported in physical pixels. Best effort; older Windows lacks the call.
func SetDPIAware() {
	if procSetProcessDpiAwarenessContext.Find() != nil {
		return
	}
	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2
	procSetProcessDpiAwarenessContext.Call(uintptr(^uintptr(3)))
}

// EnumTopLevelWindows returns every top-level window handle on the desktop.
func EnumTopLevelWindows() ([]HWND, error) {
	var handles []HWND
	cb := windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		handles = append(handles, HWND(hwnd))
		return 1 // continue enumeration
	})
	ret, _, err := procEnumWindows.Call(cb, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return handles, nil
}

// ClassName returns the window class name, or "" on failure.
func ClassName(hwnd HWND) string {
	var buf [256]uint16
	n, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}

// WindowText returns the window title, or "" for untitled windows.
func WindowText(hwnd HWND) string {
	var buf [512]uint16
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}

// WindowStyle returns the GWL_STYLE bits for a window.
func WindowStyle(hwnd HWND) uint32 {
	style, _, _ := procGetWindowLongW.Call(uintptr(hwnd), uintptr(uint32(gwlStyle)))
	return uint32(style)
}

// WindowExStyle returns the GWL_EXSTYLE bits for a window.
func WindowExStyle(hwnd HWND) uint32 {
	style, _, _ := procGetWindowLongW.Call(uintptr(hwnd), uintptr(uint32(gwlExStyle)))
	return uint32(style)
}

// IsWindowVisible reports the WS_VISIBLE state of a window.
func IsWindowVisible(hwnd HWND) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	return ret != 0
}

// WindowRect returns the window bounds in screen coordinates.
func WindowRect(hwnd HWND) (x, y, width, height int) {
	var r rect
	ret, _, _ := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return 0, 0, 0, 0
	}
	return int(r.Left), int(r.Top), int(r.Right - r.Left), int(r.Bottom - r.Top)
}

// WindowPID returns the owning process id of a window, or 0 on failure.
func WindowPID(hwnd HWND) int {
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	return int(pid)
}

// CloakedValue returns the DWMWA_CLOAKED bitmask for a window: 0 = not
// cloaked, 1 = app-cloaked, 2 = shell-cloaked, 4 = inherited.
func CloakedValue(hwnd HWND) int {
	var cloaked int32
	ret, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(hwnd),
		uintptr(dwmwaCloaked),
		uintptr(unsafe.Pointer(&cloaked)),
		unsafe.Sizeof(cloaked),
	)
	if ret != 0 { // non-zero HRESULT = failure
		return 0
	}
	return int(cloaked)
}

// ProcessIdentity resolves a PID to an executable base name and full path.
func ProcessIdentity(pid int) (name string, exePath string) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return fmt.Sprintf("<pid:%d>", pid), ""
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return fmt.Sprintf("<pid:%d>", pid), ""
	}
	exePath = syscall.UTF16ToString(buf[:size])
	name = exePath
	for i := len(exePath) - 1; i >= 0; i-- {
		if exePath[i] == '\\' || exePath[i] == '/' {
			name = exePath[i+1:]
			break
		}
	}
	return name, exePath
}

// ShowWindowCmd issues a ShowWindow command (SWShow, SWHide, SWRestore).
func ShowWindowCmd(hwnd HWND, cmd int) error {
	procShowWindow.Call(uintptr(hwnd), uintptr(cmd))
	return nil
}

// SetWindowPos moves and resizes a window, keeping it at the top of the
// non-topmost z-order.
func SetWindowPos(hwnd HWND, x, y, width, height int) error {
	ret, _, err := procSetWindowPos.Call(
		uintptr(hwnd),
		0, // HWND_TOP
		uintptr(int32(x)), uintptr(int32(y)),
		uintptr(int32(width)), uintptr(int32(height)),
		uintptr(swpShowWindow),
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

// BringToFront raises a window to the top of the z-order and tries to give
// it focus. SetForegroundWindow fails when the caller isn't the foreground
// process; BringWindowToTop still raises the window in that case.
func BringToFront(hwnd HWND) error {
	procSetForegroundWindow.Call(uintptr(hwnd))
	ret, _, err := procBringWindowToTop.Call(uintptr(hwnd))
	if ret == 0 {
		return fmt.Errorf("BringWindowToTop: %w", err)
	}
	return nil
}

// MonitorInfo describes one display and its work area.
type MonitorInfo struct {
	X, Y, Width, Height                 int
	WorkX, WorkY, WorkWidth, WorkHeight int
	Primary                             bool
}

// EnumMonitors enumerates all displays with their work areas.
func EnumMonitors() ([]MonitorInfo, error) {
	var monitors []MonitorInfo
	cb := windows.NewCallback(func(hMonitor, _, _, _ uintptr) uintptr {
		var info monitorInfo
		info.Size = uint32(unsafe.Sizeof(info))
		ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))
		if ret != 0 {
			monitors = append(monitors, MonitorInfo{
				X:          int(info.Monitor.Left),
				Y:          int(info.Monitor.Top),
				Width:      int(info.Monitor.Right - info.Monitor.Left),
				Height:     int(info.Monitor.Bottom - info.Monitor.Top),
				WorkX:      int(info.Work.Left),
				WorkY:      int(info.Work.Top),
				WorkWidth:  int(info.Work.Right - info.Work.Left),
				WorkHeight: int(info.Work.Bottom - info.Work.Top),
				Primary:    info.Flags&1 != 0, // MONITORINFOF_PRIMARY
			})
		}
		return 1
	})
	ret, _, err := procEnumDisplayMonitors.Call(0, 0, cb, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors: %w", err)
	}
	return monitors, nil
}
