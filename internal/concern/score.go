package concern

import (
	"fmt"
	"strings"

	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/trust"
)

// Windows smaller than this are considered deliberately shrunk rather than
// merely small.
const (
	MinSaneWidth  = 200
	MinSaneHeight = 100
)

// dialogClasses are window classes that mark transient popups. A persistent
// one sitting around unattended is worth the user's attention.
var dialogClasses = map[string]bool{
	"#32770": true, // standard Windows dialog (MessageBox, ShellExecute errors)
}

// Subject is the slice of a window the scorer looks at.
type Subject struct {
	State     platform.State
	OffScreen bool // geometrically off-screen even when State is cloaked
	X, Y      int
	Width     int
	Height    int
	Class     string
	Cloak     platform.CloakMask
}

// Assessment is the scoring outcome. A zero score leaves the window
// unflagged.
type Assessment struct {
	Indicators []string
	Score      int
	Level      int
}

// Reason joins the indicator texts for reporting.
func (a Assessment) Reason() string {
	return strings.Join(a.Indicators, ", ")
}

// Evaluate computes all indicators for a window. Indicators are computed
// even when the trust verdict suppresses flagging, because the would-flag
// report depends on them.
func Evaluate(s Subject, verdict trust.Verdict, w Weights) Assessment {
	var a Assessment

	if verdict.Kind == trust.KindFailed {
		a.add(fmt.Sprintf("trust-verify-failed(%s)", verdict.Reason), w.TrustVerificationFailed)
	}

	if s.State == platform.StateOffScreen {
		a.add("off-screen", w.OffScreen)
	}
	// Cloaked windows can also be positionally off-screen; the cloaked state
	// takes classification priority, so catch the geometry here.
	if s.State == platform.StateCloaked && s.OffScreen {
		a.add("off-screen", w.OffScreen)
	}

	// Deliberately tiny, hiding in plain sight. Minimized and hidden windows
	// report degenerate geometry legitimately.
	if s.State != platform.StateMinimized && s.State != platform.StateHidden {
		if (s.Width > 0 && s.Width < MinSaneWidth) || (s.Height > 0 && s.Height < MinSaneHeight) {
			a.add(fmt.Sprintf("shrunk(%dx%d)", s.Width, s.Height), w.Shrunk)
		}
	}

	// Pushed mostly past the left or top screen edge.
	if s.State == platform.StateNormal || s.State == platform.StateCloaked {
		if s.X < -(s.Width/2) || s.Y < -(s.Height/2) {
			a.add("partially-off-screen", w.PartiallyOffScreen)
		}
	}

	if dialogClasses[s.Class] {
		a.add(fmt.Sprintf("dialog(%s)", s.Class), w.Dialog)
	}

	// Cloaking is a legitimate OS feature but compounds with other
	// indicators; OS-initiated cloaking scores an extra point because the
	// user did not put the window there.
	if s.Cloak != 0 {
		a.add("cloaked", w.Cloaked)
		if s.Cloak.OSInitiated() {
			a.add("shell-cloaked", w.ShellCloaked)
		}
	}

	a.Level = LevelForScore(a.Score)
	return a
}

func (a *Assessment) add(reason string, weight int) {
	a.Indicators = append(a.Indicators, reason)
	a.Score += weight
}
