//go:build !linux && !windows

package platform

import (
	"fmt"
	"runtime"
)

// New fails on platforms without a window-system binding. Callers treat this
// as fatal at startup; no partial operation is attempted.
func New() (Backend, error) {
	return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}
