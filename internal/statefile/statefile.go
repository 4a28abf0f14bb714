// Package statefile persists the record of windows revealed by a gather run
// so a later undo can re-hide them.
package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Version written into state files; bump on incompatible layout changes.
const Version = 1

// ShownWindow identifies one window that was hidden before a gather run
// made it visible. The handle/pid pair is revalidated before undo acts.
type ShownWindow struct {
	Handle  uint64 `json:"hwnd"`
	PID     int    `json:"pid"`
	Process string `json:"process_name"`
	Title   string `json:"title"`
}

// State is the undo snapshot for one run.
type State struct {
	Version   int           `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Shown     []ShownWindow `json:"windows_shown"`
}

// Dir returns the state directory. Priority:
// 1) XDG_STATE_HOME (if set)
// 2) LOCALAPPDATA on Windows
// 3) ~/.local/state
func Dir() (string, error) {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "wingather"), nil
	}
	if runtime.GOOS == "windows" {
		if d := os.Getenv("LOCALAPPDATA"); d != "" {
			return filepath.Join(d, "wingather"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", "wingather"), nil
}

// Path returns the last-shown state file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last_shown.json"), nil
}

// Save writes the undo snapshot, creating the state directory if needed.
func Save(shown []ShownWindow) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}

	state := State{
		Version:   Version,
		Timestamp: time.Now(),
		Shown:     shown,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	path := filepath.Join(dir, "last_shown.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write state file: %w", err)
	}
	return path, nil
}

// Load reads the undo snapshot. A missing file is reported via os.IsNotExist
// on the wrapped error.
func Load() (*State, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return &state, nil
}

// Remove deletes the state file; a missing file is not an error.
func Remove() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
