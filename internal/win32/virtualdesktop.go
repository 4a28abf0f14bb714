//go:build windows

package win32

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

// IVirtualDesktopManager is the one documented virtual-desktop COM interface.
// It can test whether a window is on the current desktop and move a window
// the caller owns to another desktop.
var (
	clsidVirtualDesktopManager = ole.NewGUID("{AA509086-5CA9-4C25-8F95-589D3C07B48A}")
	iidVirtualDesktopManager   = ole.NewGUID("{A5CD92FF-29BE-454C-8D04-D82879FB3F1B}")
)

type virtualDesktopManagerVtbl struct {
	ole.IUnknownVtbl
	IsWindowOnCurrentVirtualDesktop uintptr
	GetWindowDesktopId              uintptr
	MoveWindowToDesktop             uintptr
}

// VirtualDesktopManager wraps the IVirtualDesktopManager COM object.
type VirtualDesktopManager struct {
	obj *ole.IUnknown
}

// NewVirtualDesktopManager initializes COM on the calling thread and creates
// the desktop manager instance.
func NewVirtualDesktopManager() (*VirtualDesktopManager, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE means COM was already initialized on this thread.
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return nil, fmt.Errorf("initialize COM: %w", err)
		}
	}
	unknown, err := ole.CreateInstance(clsidVirtualDesktopManager, iidVirtualDesktopManager)
	if err != nil {
		return nil, fmt.Errorf("create IVirtualDesktopManager: %w", err)
	}
	return &VirtualDesktopManager{obj: unknown}, nil
}

func (m *VirtualDesktopManager) vtbl() *virtualDesktopManagerVtbl {
	return (*virtualDesktopManagerVtbl)(unsafe.Pointer(m.obj.RawVTable))
}

// OnCurrentDesktop reports whether a window is on the active virtual desktop.
func (m *VirtualDesktopManager) OnCurrentDesktop(hwnd HWND) (bool, error) {
	var onCurrent int32
	hr, _, _ := syscall.SyscallN(
		m.vtbl().IsWindowOnCurrentVirtualDesktop,
		uintptr(unsafe.Pointer(m.obj)),
		uintptr(hwnd),
		uintptr(unsafe.Pointer(&onCurrent)),
	)
	if hr != 0 {
		return false, fmt.Errorf("IsWindowOnCurrentVirtualDesktop: HRESULT 0x%08X", hr)
	}
	return onCurrent != 0, nil
}

// MoveToCurrentDesktop moves a window to the active virtual desktop. It works
// by finding any window already on the current desktop, reading its desktop
// id, and moving the target there.
func (m *VirtualDesktopManager) MoveToCurrentDesktop(hwnd HWND) error {
	handles, err := EnumTopLevelWindows()
	if err != nil {
		return err
	}
	var current ole.GUID
	found := false
	for _, h := range handles {
		if h == hwnd || !IsWindowVisible(h) {
			continue
		}
		on, err := m.OnCurrentDesktop(h)
		if err != nil || !on {
			continue
		}
		hr, _, _ := syscall.SyscallN(
			m.vtbl().GetWindowDesktopId,
			uintptr(unsafe.Pointer(m.obj)),
			uintptr(h),
			uintptr(unsafe.Pointer(&current)),
		)
		if hr == 0 {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no reference window on current desktop")
	}
	hr, _, _ := syscall.SyscallN(
		m.vtbl().MoveWindowToDesktop,
		uintptr(unsafe.Pointer(m.obj)),
		uintptr(hwnd),
		uintptr(unsafe.Pointer(&current)),
	)
	if hr != 0 {
		return fmt.Errorf("MoveWindowToDesktop: HRESULT 0x%08X", hr)
	}
	return nil
}

// Close releases the COM object.
func (m *VirtualDesktopManager) Close() {
	if m.obj != nil {
		m.obj.Release()
		m.obj = nil
	}
}
