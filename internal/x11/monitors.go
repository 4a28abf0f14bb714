package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display. The Work* fields describe the
// usable area after subtracting panels and docks.
type Monitor struct {
	ID         int
	Name       string
	X          int
	Y          int
	Width      int
	Height     int
	WorkX      int
	WorkY      int
	WorkWidth  int
	WorkHeight int
	Primary    bool
}

// GetMonitors retrieves all active monitors using XRandR. Work areas are
// derived by intersecting each monitor with the EWMH work area of the
// current desktop.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if rep, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = rep.Output
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		primary := false
		for _, out := range crtcInfo.Outputs {
			if out == primaryOutput && primaryOutput != 0 {
				primary = true
			}
		}
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			outputName = string(outputInfo.Name)
		}

		m := Monitor{
			ID:      i,
			Name:    outputName,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
			Primary: primary,
		}
		m.WorkX, m.WorkY, m.WorkWidth, m.WorkHeight = m.X, m.Y, m.Width, m.Height
		monitors = append(monitors, m)
	}

	if len(monitors) > 0 {
		hasPrimary := false
		for _, m := range monitors {
			if m.Primary {
				hasPrimary = true
			}
		}
		if !hasPrimary {
			monitors[0].Primary = true
		}
	}

	c.applyWorkArea(monitors)
	return monitors, nil
}

// applyWorkArea shrinks each monitor's work rect to its intersection with
// the EWMH work area of the current desktop (excludes panels, docks, etc.).
func (c *Connection) applyWorkArea(monitors []Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	waX, waY := int(wa.X), int(wa.Y)
	waW, waH := int(wa.Width), int(wa.Height)

	for i := range monitors {
		m := &monitors[i]
		x1 := max(m.X, waX)
		y1 := max(m.Y, waY)
		x2 := min(m.X+m.Width, waX+waW)
		y2 := min(m.Y+m.Height, waY+waH)
		if x2 > x1 && y2 > y1 {
			m.WorkX = x1
			m.WorkY = y1
			m.WorkWidth = x2 - x1
			m.WorkHeight = y2 - y1
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
