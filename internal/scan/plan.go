package scan

import (
	"github.com/dazzletools/wingather/internal/concern"
	"github.com/dazzletools/wingather/internal/platform"
)

// Size a collapsed window is restored to before centering.
const (
	DefaultRestoreWidth  = 800
	DefaultRestoreHeight = 600
)

// placement computes the centered target rectangle for a window within the
// work area: tiny/collapsed windows are widened to a sane default size,
// clamped to the area, offset by the cascade vector, then clamped again so
// the target never escapes the visible region.
func placement(r *Record, area platform.Rect, offX, offY int) platform.Rect {
	w := r.Bounds.Width
	if w < concern.MinSaneWidth {
		w = DefaultRestoreWidth
	}
	h := r.Bounds.Height
	if h < concern.MinSaneHeight {
		h = DefaultRestoreHeight
	}
	w = min(w, area.Width)
	h = min(h, area.Height)

	cx := area.X + (area.Width-w)/2 + offX
	cy := area.Y + (area.Height-h)/2 + offY
	cx = max(area.X, min(cx, area.X+area.Width-w))
	cy = max(area.Y, min(cy, area.Y+area.Height-h))
	return platform.Rect{X: cx, Y: cy, Width: w, Height: h}
}

// simulate decides the action a window would get and computes its target
// position without touching the backend.
func simulate(r *Record, area platform.Rect, opts *Options, offX, offY int) {
	tiny := r.Bounds.Width < concern.MinSaneWidth || r.Bounds.Height < concern.MinSaneHeight
	resizeNote := ""
	if tiny && r.State != platform.StateHidden {
		resizeNote = "+resize"
	}
	fgNote := ""
	if r.Suspicious {
		fgNote = "+foreground"
	}

	target := func() {
		p := placement(r, area, offX, offY)
		r.setTarget(p.X, p.Y)
	}

	switch {
	case r.State == platform.StateMinimized:
		r.Action = "would:restore" + resizeNote + "+center" + fgNote
		target()

	case r.State == platform.StateHidden && opts.ShowHidden:
		if opts.actOnAll() || r.Suspicious {
			r.Action = "would:show" + resizeNote + "+center" + fgNote
			target()
		} else {
			r.Action = "skip:hidden-normal"
		}

	case r.State == platform.StateHidden:
		r.Action = "skip:hidden"

	case r.State == platform.StateCloaked:
		if opts.IncludeVirtual || r.Suspicious {
			r.Action = "would:pull-desktop" + resizeNote + "+center" + fgNote
			target()
		} else {
			r.Action = "skip:cloaked"
		}

	default:
		// normal, maximized, off-screen
		r.Action = "would:center" + resizeNote + fgNote
		target()
	}
}

// execute performs the planned transitions for one window. A binding
// failure marks this window failed and stops its processing; it never
// aborts the batch. Returns whether a hidden window was revealed, for the
// undo record.
func execute(b platform.Backend, r *Record, area platform.Rect, opts *Options, offX, offY int) (revealed bool) {
	var parts []string

	switch {
	case r.State == platform.StateMinimized:
		if err := b.Restore(r.Handle); err != nil {
			r.Action = "failed"
			return false
		}
		parts = append(parts, "restored")

	case r.State == platform.StateHidden && opts.ShowHidden:
		if !opts.actOnAll() && !r.Suspicious {
			r.Action = "skip:hidden-normal"
			return false
		}
		if err := b.Show(r.Handle); err != nil {
			r.Action = "failed"
			return false
		}
		parts = append(parts, "shown")
		revealed = true

	case r.State == platform.StateHidden:
		r.Action = "skip:hidden"
		return false

	case r.State == platform.StateCloaked:
		if !opts.IncludeVirtual && !r.Suspicious {
			r.Action = "skip:cloaked"
			return false
		}
		if err := b.PullToCurrentDesktop(r.Handle); err != nil {
			r.Action = "failed:vd-move"
			return false
		}
		parts = append(parts, "pulled-from-desktop")
		b.Show(r.Handle)
	}

	p := placement(r, area, offX, offY)
	if err := b.MoveResize(r.Handle, p); err != nil {
		parts = append(parts, "center-failed")
	} else {
		parts = append(parts, "centered")
		r.setTarget(p.X, p.Y)
	}

	// Suspicious windows come to the front so the user sees them. The
	// processing order (least severe first) leaves the most severe window
	// topmost.
	if r.Suspicious {
		if err := b.Raise(r.Handle); err == nil {
			parts = append(parts, "foreground")
		}
	}

	r.Action = join(parts)
	return revealed
}

func join(parts []string) string {
	if len(parts) == 0 {
		return "unchanged"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "+" + p
	}
	return out
}
