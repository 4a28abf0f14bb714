package concern

import (
	"strings"
	"testing"

	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/trust"
)

func TestLevelForScore(t *testing.T) {
	cases := []struct{ score, level int }{
		{0, 0},
		{1, 5},
		{2, 4},
		{3, 3},
		{4, 2},
		{5, 1},
		{6, 1},
		{12, 1},
	}
	for _, tc := range cases {
		if got := LevelForScore(tc.score); got != tc.level {
			t.Errorf("LevelForScore(%d) = %d, want %d", tc.score, got, tc.level)
		}
	}
}

func TestDefaultWeightsTrustFailureIsMax(t *testing.T) {
	w := DefaultWeights()
	others := []int{w.OffScreen, w.Shrunk, w.Dialog, w.PartiallyOffScreen, w.Cloaked, w.ShellCloaked}
	for _, v := range others {
		if v <= 0 {
			t.Fatalf("non-positive weight in %+v", w)
		}
		if v >= w.TrustVerificationFailed {
			t.Fatalf("trust-verification-failed (%d) not strictly the max weight", w.TrustVerificationFailed)
		}
	}
}

func TestEvaluateCleanWindow(t *testing.T) {
	s := Subject{State: platform.StateNormal, X: 100, Y: 100, Width: 800, Height: 600}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	if a.Score != 0 || a.Level != 0 || len(a.Indicators) != 0 {
		t.Fatalf("clean window scored %+v", a)
	}
}

func TestEvaluateOffScreen(t *testing.T) {
	s := Subject{State: platform.StateOffScreen, X: -5000, Y: 0, Width: 800, Height: 600}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	if a.Score != 4 || a.Level != 2 {
		t.Fatalf("off-screen: score %d level %d, want 4/2", a.Score, a.Level)
	}
	if a.Reason() != "off-screen" {
		t.Fatalf("reason = %q", a.Reason())
	}
}

func TestEvaluateCloakedOffScreenStacks(t *testing.T) {
	// state stays cloaked but the geometry indicator still fires, plus the
	// cloaking indicators themselves.
	s := Subject{
		State:     platform.StateCloaked,
		OffScreen: true,
		X:         -5000, Y: 0,
		Width: 800, Height: 600,
		Cloak: platform.CloakShell,
	}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	// off-screen 4 + partially-off-screen 2 + cloaked 1 + shell-cloaked 1
	if a.Score != 8 || a.Level != 1 {
		t.Fatalf("score %d level %d (%s), want 8/1", a.Score, a.Level, a.Reason())
	}
}

func TestEvaluateShrunk(t *testing.T) {
	s := Subject{State: platform.StateNormal, X: 50, Y: 50, Width: 1, Height: 1}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	if a.Score != 3 || a.Level != 3 {
		t.Fatalf("shrunk: score %d level %d, want 3/3", a.Score, a.Level)
	}
	if !strings.Contains(a.Reason(), "shrunk(1x1)") {
		t.Fatalf("reason = %q", a.Reason())
	}
}

func TestEvaluateShrunkSkipsMinimizedAndHidden(t *testing.T) {
	for _, st := range []platform.State{platform.StateMinimized, platform.StateHidden} {
		s := Subject{State: st, Width: 0, Height: 0}
		a := Evaluate(s, trust.NoMatch(), DefaultWeights())
		if a.Score != 0 {
			t.Errorf("%s window with degenerate geometry scored %d", st, a.Score)
		}
	}
}

func TestEvaluatePartiallyOffScreen(t *testing.T) {
	s := Subject{State: platform.StateNormal, X: -500, Y: 100, Width: 800, Height: 600}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	if a.Score != 2 || a.Level != 4 {
		t.Fatalf("score %d level %d, want 2/4", a.Score, a.Level)
	}
	if a.Reason() != "partially-off-screen" {
		t.Fatalf("reason = %q", a.Reason())
	}
}

func TestEvaluateDialog(t *testing.T) {
	s := Subject{State: platform.StateNormal, X: 100, Y: 100, Width: 400, Height: 200, Class: "#32770"}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	if a.Score != 2 {
		t.Fatalf("dialog score %d, want 2", a.Score)
	}
	if !strings.Contains(a.Reason(), "dialog(#32770)") {
		t.Fatalf("reason = %q", a.Reason())
	}
}

func TestEvaluateAppCloakedScoresOne(t *testing.T) {
	s := Subject{State: platform.StateCloaked, X: 100, Y: 100, Width: 800, Height: 600, Cloak: platform.CloakApp}
	a := Evaluate(s, trust.NoMatch(), DefaultWeights())
	if a.Score != 1 || a.Level != 5 {
		t.Fatalf("app-cloaked: score %d level %d, want 1/5", a.Score, a.Level)
	}
}

func TestEvaluateTrustFailureDominates(t *testing.T) {
	entry := &trust.Entry{Pattern: "explorer.exe", Verify: trust.VerifyMicrosoftSigned}
	verdict := trust.FailedFor(entry, "invalid-signature")
	s := Subject{State: platform.StateNormal, X: 100, Y: 100, Width: 800, Height: 600}
	a := Evaluate(s, verdict, DefaultWeights())
	if a.Score != 5 || a.Level != 1 {
		t.Fatalf("score %d level %d, want 5/1", a.Score, a.Level)
	}
	if a.Indicators[0] != "trust-verify-failed(invalid-signature)" {
		t.Fatalf("first indicator = %q", a.Indicators[0])
	}
}

func TestEvaluateTrustedStillComputesIndicators(t *testing.T) {
	entry := &trust.Entry{Pattern: "explorer.exe"}
	s := Subject{State: platform.StateOffScreen, X: -5000, Y: 0, Width: 800, Height: 600}
	a := Evaluate(s, trust.TrustedBy(entry), DefaultWeights())
	if a.Score != 4 {
		t.Fatalf("trusted window indicators suppressed: score %d, want 4", a.Score)
	}
}
