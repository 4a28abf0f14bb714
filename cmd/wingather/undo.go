package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/statefile"
)

func runUndo(args []string) int {
	fs := flag.NewFlagSet("undo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wingather undo")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Re-hides the windows a previous --show-hidden run made visible,")
		fmt.Fprintln(os.Stderr, "then removes the saved state file.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	log := newLogger(*verbose)

	st, err := statefile.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Nothing to undo: %v\n", err)
		return 1
	}
	if len(st.Shown) == 0 {
		fmt.Println("Nothing to undo.")
		return 0
	}

	backend, err := platform.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	wins, err := backend.Enumerate(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Handles get recycled, so a stored handle only counts when the pid
	// still matches the window behind it.
	current := make(map[uint64]platform.Window, len(wins))
	for _, w := range wins {
		current[uint64(w.Handle)] = w
	}

	var hidden, gone, failed int
	for _, s := range st.Shown {
		w, ok := current[s.Handle]
		if !ok || w.PID != s.PID {
			log.Debug("window gone", "hwnd", s.Handle, "process", s.Process)
			gone++
			continue
		}
		if !w.Visible {
			log.Debug("already hidden", "hwnd", s.Handle, "process", s.Process)
			gone++
			continue
		}
		if err := backend.Hide(w.Handle); err != nil {
			log.Warn("could not hide window", "hwnd", s.Handle, "process", s.Process, "error", err)
			failed++
			continue
		}
		hidden++
	}

	fmt.Printf("Re-hidden %d window(s)", hidden)
	if gone > 0 {
		fmt.Printf(", %d already gone", gone)
	}
	if failed > 0 {
		fmt.Printf(", %d failed", failed)
	}
	fmt.Println(".")

	if failed == 0 {
		if err := statefile.Remove(); err != nil {
			log.Warn("could not remove state file", "error", err)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}
