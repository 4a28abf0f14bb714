package trust

import (
	"strings"
	"testing"

	"github.com/dazzletools/wingather/internal/signature"
)

func TestCheckNoMatch(t *testing.T) {
	entries := []Entry{{Pattern: "explorer.exe", Source: SourceDefault}}
	v := Check("random.exe", `C:\Temp\random.exe`, entries, nil)
	if v.Kind != KindNoMatch {
		t.Fatalf("verdict = %v, want NoMatch", v.Kind)
	}
}

func TestCheckFirstMatchWins(t *testing.T) {
	entries := []Entry{
		{Pattern: "*.exe", Source: SourceUser},
		{Pattern: "explorer.exe", Source: SourceDefault, Verify: VerifyMicrosoftSigned},
	}
	v := Check("explorer.exe", "", entries, nil)
	if v.Kind != KindTrusted {
		t.Fatalf("verdict = %v, want Trusted from first (unverified) entry", v.Kind)
	}
	if v.Entry.Source != SourceUser {
		t.Fatalf("matched entry source = %q, want %q", v.Entry.Source, SourceUser)
	}
}

func TestCheckCaseInsensitiveName(t *testing.T) {
	entries := []Entry{{Pattern: "Explorer.EXE", Source: SourceUser}}
	v := Check("EXPLORER.exe", `D:\anywhere\explorer.exe`, entries, nil)
	if v.Kind != KindTrusted {
		t.Fatalf("verdict = %v, want Trusted regardless of case and path", v.Kind)
	}
}

func TestCheckUnexpectedPath(t *testing.T) {
	entries := []Entry{{
		Pattern:       "explorer.exe",
		Verify:        VerifyMicrosoftSigned,
		ExpectedPaths: []string{`C:\Windows\explorer.exe`},
	}}
	v := Check("explorer.exe", `C:\Users\Public\explorer.exe`, entries, nil)
	if v.Kind != KindFailed {
		t.Fatalf("verdict = %v, want Failed", v.Kind)
	}
	if !strings.HasPrefix(v.Reason, "unexpected-path:") {
		t.Fatalf("reason = %q, want unexpected-path prefix", v.Reason)
	}
	if !strings.Contains(v.Reason, `C:\Users\Public\explorer.exe`) {
		t.Fatalf("reason %q missing offending path", v.Reason)
	}
}

func TestCheckPathGlobToleratesPackageHash(t *testing.T) {
	entries := []Entry{{
		Pattern:       "searchhost.exe",
		Verify:        VerifyMicrosoftSigned,
		ExpectedPaths: []string{`C:\Windows\SystemApps\MicrosoftWindows.Client.CBS_*\SearchHost.exe`},
	}}
	path := `C:\Windows\SystemApps\MicrosoftWindows.Client.CBS_cw5n1h2txyewy\SearchHost.exe`
	sigs := signature.Cache{
		signature.NormalizePath(path): {Valid: true, OSBinary: true},
	}
	v := Check("SearchHost.exe", path, entries, sigs)
	if v.Kind != KindTrusted {
		t.Fatalf("verdict = %v (%s), want Trusted", v.Kind, v.Reason)
	}
}

func TestCheckSignatureOutcomes(t *testing.T) {
	entries := []Entry{{
		Pattern: "explorer.exe",
		Verify:  VerifyMicrosoftSigned,
	}}
	path := `C:\Windows\explorer.exe`
	key := signature.NormalizePath(path)

	cases := []struct {
		name   string
		sigs   signature.Cache
		reason string
	}{
		{"uncached", signature.Cache{}, "signature-not-checked"},
		{"invalid", signature.Cache{key: {Valid: false}}, "invalid-signature"},
		{"not os binary", signature.Cache{key: {Valid: true, OSBinary: false}}, "not-os-binary"},
	}
	for _, tc := range cases {
		v := Check("explorer.exe", path, entries, tc.sigs)
		if v.Kind != KindFailed || v.Reason != tc.reason {
			t.Errorf("%s: verdict = %v reason %q, want Failed %q", tc.name, v.Kind, v.Reason, tc.reason)
		}
	}

	v := Check("explorer.exe", path, entries, signature.Cache{key: {Valid: true, OSBinary: true}})
	if v.Kind != KindTrusted {
		t.Errorf("valid OS binary: verdict = %v, want Trusted", v.Kind)
	}
}

func TestCheckVerifyWithoutPathTrusts(t *testing.T) {
	// No executable path means the signature stage cannot run; name and
	// path checks passing is all we can require.
	entries := []Entry{{Pattern: "explorer.exe", Verify: VerifyMicrosoftSigned}}
	v := Check("explorer.exe", "", entries, nil)
	if v.Kind != KindTrusted {
		t.Fatalf("verdict = %v, want Trusted", v.Kind)
	}
}

func TestDenied(t *testing.T) {
	deny := []string{"cmd.exe", "powershell*.exe", "mshta.exe"}
	if !Denied("CMD.EXE", deny) {
		t.Errorf("cmd.exe not denied")
	}
	if !Denied("powershell_ise.exe", deny) {
		t.Errorf("powershell_ise.exe not denied by glob")
	}
	if Denied("notepad.exe", deny) {
		t.Errorf("notepad.exe denied")
	}
}

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries(nil)
	if len(entries) == 0 {
		t.Fatal("no default entries loaded")
	}
	var explorer *Entry
	for i := range entries {
		if entries[i].Source != SourceDefault {
			t.Errorf("entry %q source = %q, want default", entries[i].Pattern, entries[i].Source)
		}
		if entries[i].Pattern == "explorer.exe" {
			explorer = &entries[i]
		}
	}
	if explorer == nil {
		t.Fatal("explorer.exe missing from default trust")
	}
	if explorer.Verify != VerifyMicrosoftSigned || len(explorer.ExpectedPaths) == 0 {
		t.Fatalf("explorer entry lacks verification gates: %+v", explorer)
	}
}

func TestDefaultDenylist(t *testing.T) {
	deny := DefaultDenylist(nil)
	for _, want := range []string{"cmd.exe", "powershell.exe", "mshta.exe", "rundll32.exe"} {
		if !Denied(want, deny) {
			t.Errorf("%s missing from deny list", want)
		}
	}
	for _, benign := range []string{"notepad.exe", "wmplayer.exe"} {
		if Denied(benign, deny) {
			t.Errorf("%s wrongly denied", benign)
		}
	}
}
