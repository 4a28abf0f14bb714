package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/signature"
)

type fakeBackend struct {
	windows  []platform.Window
	monitors []platform.Monitor
	calls    map[string]int

	failRestore bool
	failShow    bool
	failMove    bool
	failPull    bool
	elevated    bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		monitors: []platform.Monitor{{
			Bounds:  platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			Work:    platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			Primary: true,
		}},
		calls:    map[string]int{},
		elevated: true,
	}
}

func (f *fakeBackend) Enumerate(includeHidden bool) ([]platform.Window, error) {
	if includeHidden {
		return f.windows, nil
	}
	var out []platform.Window
	for _, w := range f.windows {
		if w.Visible || w.Minimized {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeBackend) Monitors() ([]platform.Monitor, error) { return f.monitors, nil }

func (f *fakeBackend) WorkArea(index int) (platform.Rect, error) {
	if index >= 0 && index < len(f.monitors) {
		return f.monitors[index].Work, nil
	}
	return f.PrimaryWorkArea()
}

func (f *fakeBackend) PrimaryWorkArea() (platform.Rect, error) {
	return f.monitors[0].Work, nil
}

func (f *fakeBackend) op(name string, fail bool) error {
	f.calls[name]++
	if fail {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeBackend) Restore(platform.Handle) error { return f.op("restore", f.failRestore) }
func (f *fakeBackend) Show(platform.Handle) error    { return f.op("show", f.failShow) }
func (f *fakeBackend) Hide(platform.Handle) error    { return f.op("hide", false) }
func (f *fakeBackend) MoveResize(_ platform.Handle, _ platform.Rect) error {
	return f.op("moveresize", f.failMove)
}
func (f *fakeBackend) Raise(platform.Handle) error { return f.op("raise", false) }
func (f *fakeBackend) PullToCurrentDesktop(platform.Handle) error {
	return f.op("pull", f.failPull)
}
func (f *fakeBackend) Elevated() bool { return f.elevated }

type cannedVerifier struct{ cache signature.Cache }

func (c cannedVerifier) Verify(context.Context, []string) signature.Cache { return c.cache }

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func visibleWindow(handle uint64, process, title string, x, y, w, h int) platform.Window {
	return platform.Window{
		Handle:  platform.Handle(handle),
		PID:     int(handle) + 1000,
		Process: process,
		Title:   title,
		Visible: true,
		Bounds:  platform.Rect{X: x, Y: y, Width: w, Height: h},
	}
}

func TestRunCleanDesktop(t *testing.T) {
	b := newFakeBackend()
	b.windows = []platform.Window{
		visibleWindow(1, "editor.exe", "notes", 100, 100, 800, 600),
		visibleWindow(2, "browser.exe", "docs", 300, 200, 1024, 768),
	}

	res, err := Run(context.Background(), b, Options{DryRun: true, Log: quietLog()})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records", len(res.Records))
	}
	for _, r := range res.Records {
		if r.Suspicious {
			t.Errorf("%s flagged: %s", r.Process, r.ConcernReason)
		}
		if r.Action != "skip:normal" {
			t.Errorf("%s action = %q, want skip:normal in suspicious-only mode", r.Process, r.Action)
		}
	}
}

func TestRunFlagsOffScreenWindow(t *testing.T) {
	b := newFakeBackend()
	b.windows = []platform.Window{
		visibleWindow(1, "editor.exe", "notes", 100, 100, 800, 600),
		visibleWindow(2, "stealer.exe", "hidden loot", -9000, -9000, 800, 600),
	}

	res, err := Run(context.Background(), b, Options{DryRun: true, Log: quietLog()})
	if err != nil {
		t.Fatal(err)
	}

	first := res.Records[0]
	if first.Process != "stealer.exe" || !first.Suspicious {
		t.Fatalf("suspicious window not first: %+v", first)
	}
	if first.State != platform.StateOffScreen || first.ConcernLevel != 2 {
		t.Fatalf("state=%s level=%d, want off-screen level 2", first.State, first.ConcernLevel)
	}
	if first.Action != "would:center+foreground" {
		t.Fatalf("action = %q", first.Action)
	}
}

func TestRunListOnlySkipsPlanning(t *testing.T) {
	b := newFakeBackend()
	b.windows = []platform.Window{
		visibleWindow(1, "stealer.exe", "loot", -9000, -9000, 800, 600),
	}

	res, err := Run(context.Background(), b, Options{ListOnly: true, Log: quietLog()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Records[0].Action != "" {
		t.Fatalf("list-only planned an action: %q", res.Records[0].Action)
	}
	if !res.Records[0].Suspicious {
		t.Fatal("list-only skipped scoring")
	}
}

func TestRunFilterImpliesActOnAll(t *testing.T) {
	b := newFakeBackend()
	b.windows = []platform.Window{
		visibleWindow(1, "editor.exe", "notes", 100, 100, 800, 600),
		visibleWindow(2, "browser.exe", "docs", 300, 200, 1024, 768),
	}

	res, err := Run(context.Background(), b, Options{
		DryRun: true, Filter: "*editor*", Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("filter kept %d records, want 1", len(res.Records))
	}
	if res.Records[0].Action != "would:center" {
		t.Fatalf("filtered window action = %q, want an actual plan", res.Records[0].Action)
	}
}

func TestRunExcludeProcess(t *testing.T) {
	b := newFakeBackend()
	b.windows = []platform.Window{
		visibleWindow(1, "editor.exe", "notes", 100, 100, 800, 600),
		visibleWindow(2, "browser.exe", "docs", 300, 200, 1024, 768),
	}

	res, err := Run(context.Background(), b, Options{
		ListOnly: true, ExcludeProcesses: []string{"browser*"}, Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].Process != "editor.exe" {
		t.Fatalf("exclusion failed: %d records", len(res.Records))
	}
}

func TestRunUserTrustSuppressesFlagging(t *testing.T) {
	b := newFakeBackend()
	b.windows = []platform.Window{
		visibleWindow(1, "mytool.exe", "background agent", -9000, 0, 800, 600),
	}

	res, err := Run(context.Background(), b, Options{
		ListOnly:         true,
		TrustedProcesses: []string{"mytool.exe"},
		NoDefaultTrust:   true,
		Log:              quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	r := res.Records[0]
	if r.Suspicious || !r.Trusted {
		t.Fatalf("suspicious=%v trusted=%v", r.Suspicious, r.Trusted)
	}
	if r.TrustSource != "user" {
		t.Fatalf("trust source = %q", r.TrustSource)
	}
	if r.WouldConcernReason != "off-screen" || r.WouldConcernLevel != 2 {
		t.Fatalf("shadow fields: %q level %d", r.WouldConcernReason, r.WouldConcernLevel)
	}
	if r.ConcernLevel != 0 || r.ConcernScore != 0 {
		t.Fatal("trusted window kept live concern values")
	}
}

func TestRunTrustFailureRaisesConcern(t *testing.T) {
	// An executable named explorer.exe in the wrong place must fail the
	// default trust entry's path check and score maximum concern.
	b := newFakeBackend()
	w := visibleWindow(1, "explorer.exe", "", 100, 100, 800, 600)
	w.ExePath = `C:\Users\Public\explorer.exe`
	b.windows = []platform.Window{w}

	res, err := Run(context.Background(), b, Options{
		ListOnly: true,
		Verifier: cannedVerifier{cache: signature.Cache{}},
		Log:      quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	r := res.Records[0]
	if !r.Suspicious || r.ConcernLevel != 1 {
		t.Fatalf("suspicious=%v level=%d, want flagged level 1", r.Suspicious, r.ConcernLevel)
	}
	if r.ConcernReason != `trust-verify-failed(unexpected-path:C:\Users\Public\explorer.exe)` {
		t.Fatalf("reason = %q", r.ConcernReason)
	}
}

func TestRunGenuineExplorerTrusted(t *testing.T) {
	b := newFakeBackend()
	path := `C:\Windows\explorer.exe`
	w := visibleWindow(1, "explorer.exe", "", 100, 100, 800, 600)
	w.ExePath = path
	b.windows = []platform.Window{w}

	res, err := Run(context.Background(), b, Options{
		ListOnly: true,
		Verifier: cannedVerifier{cache: signature.Cache{
			signature.NormalizePath(path): {Valid: true, OSBinary: true, Signer: "Microsoft Windows"},
		}},
		Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	r := res.Records[0]
	if !r.Trusted || r.Suspicious {
		t.Fatalf("trusted=%v suspicious=%v", r.Trusted, r.Suspicious)
	}
	if r.TrustSource != "default" || r.TrustVerified != "microsoft-signed" {
		t.Fatalf("source=%q verified=%q", r.TrustSource, r.TrustVerified)
	}
}

func TestRunAutoTrustPromotion(t *testing.T) {
	b := newFakeBackend()
	path := `C:\Program Files\Windows Media Player\wmplayer.exe`
	w := visibleWindow(1, "wmplayer.exe", "player", 50, 50, 1180, 55)
	w.ExePath = path
	b.windows = []platform.Window{w}

	res, err := Run(context.Background(), b, Options{
		ListOnly: true,
		Verifier: cannedVerifier{cache: signature.Cache{
			signature.NormalizePath(path): {Valid: true, OSBinary: true, Signer: "Microsoft"},
		}},
		Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	r := res.Records[0]
	if r.Suspicious || !r.Trusted || r.TrustSource != "microsoft-signed" {
		t.Fatalf("promotion failed: suspicious=%v trusted=%v source=%q",
			r.Suspicious, r.Trusted, r.TrustSource)
	}
	if r.WouldConcernReason != "shrunk(1180x55)" {
		t.Fatalf("shadow reason = %q", r.WouldConcernReason)
	}
}

func TestRunDenyListedBinaryStaysSuspicious(t *testing.T) {
	b := newFakeBackend()
	path := `C:\Windows\System32\mshta.exe`
	w := visibleWindow(1, "mshta.exe", "", -9000, 0, 800, 600)
	w.ExePath = path
	b.windows = []platform.Window{w}

	res, err := Run(context.Background(), b, Options{
		ListOnly: true,
		Verifier: cannedVerifier{cache: signature.Cache{
			signature.NormalizePath(path): {Valid: true, OSBinary: true, Signer: "Microsoft"},
		}},
		Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	r := res.Records[0]
	if !r.Suspicious || r.Trusted {
		t.Fatalf("deny-listed binary auto-trusted: suspicious=%v trusted=%v", r.Suspicious, r.Trusted)
	}
}

func TestRunOrderingAndCascade(t *testing.T) {
	b := newFakeBackend()
	// Three suspicious windows of differing severity plus one clean one.
	cloaked := visibleWindow(1, "low.exe", "low", 100, 100, 800, 600)
	cloaked.Cloak = platform.CloakApp                             // cloaked: score 1, level 5
	off := visibleWindow(2, "mid.exe", "mid", -9000, 0, 800, 600) // off-screen: 4, level 2
	worst := visibleWindow(3, "worst.exe", "worst", -9000, 0, 1, 1)
	worst.Cloak = platform.CloakShell // cloaked off-screen shrunk: level 1
	clean := visibleWindow(4, "clean.exe", "clean", 200, 200, 800, 600)
	b.windows = []platform.Window{cloaked, off, worst, clean}

	res, err := Run(context.Background(), b, Options{
		DryRun: true, NoDefaultTrust: true, IncludeVirtual: true, Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}

	order := make([]string, len(res.Records))
	for i, r := range res.Records {
		order[i] = r.Process
	}
	want := []string{"worst.exe", "mid.exe", "low.exe", "clean.exe"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	// Most severe gets the center cascade slot.
	byProc := map[string]*Record{}
	for _, r := range res.Records {
		byProc[r.Process] = r
	}
	if x, y := byProc["worst.exe"].TargetX, byProc["worst.exe"].TargetY; x != 560 || y != 240 {
		t.Fatalf("most severe target = (%d, %d), want centered (560, 240)", x, y)
	}
	if x, y := byProc["mid.exe"].TargetX, byProc["mid.exe"].TargetY; x != 500 || y != 180 {
		t.Fatalf("second target = (%d, %d), want (-60, -60) slot (500, 180)", x, y)
	}
	if byProc["clean.exe"].Action != "skip:normal" {
		t.Fatalf("clean window action = %q", byProc["clean.exe"].Action)
	}
}

func TestRunExecuteRecordsRevealed(t *testing.T) {
	b := newFakeBackend()
	hidden := platform.Window{
		Handle: 9, PID: 900, Process: "lurker.exe", Title: "x",
		Visible: false,
		Bounds:  platform.Rect{X: -9000, Y: 0, Width: 800, Height: 600},
	}
	b.windows = []platform.Window{hidden}

	res, err := Run(context.Background(), b, Options{
		ShowHidden: true, GatherAll: true, NoDefaultTrust: true, Log: quietLog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Revealed) != 1 || res.Revealed[0].Process != "lurker.exe" {
		t.Fatalf("revealed = %v", res.Revealed)
	}
	if b.calls["show"] != 1 {
		t.Fatalf("show calls = %d", b.calls["show"])
	}
}
