package signature

import (
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	a := NormalizePath(`C:\Windows\Explorer.EXE`)
	b := NormalizePath(`c:/windows/explorer.exe`)
	if a != b {
		t.Fatalf("case/separator variants differ: %q vs %q", a, b)
	}
	if a != "c:/windows/explorer.exe" {
		t.Fatalf("normalized form = %q, want c:/windows/explorer.exe", a)
	}
}

func TestParseOutput(t *testing.T) {
	out := strings.Join([]string{
		`C:\Windows\explorer.exe|Valid|True|CN=Microsoft Windows, O=Microsoft Corporation`,
		`C:\Temp\fake.exe|NotSigned|False|`,
		`C:\Temp\broken.exe|HashMismatch|True|CN=Someone`,
	}, "\r\n")

	cache := parseOutput(out)
	if len(cache) != 3 {
		t.Fatalf("parsed %d records, want 3", len(cache))
	}

	explorer := cache[NormalizePath(`C:\Windows\explorer.exe`)]
	if !explorer.Valid || !explorer.OSBinary {
		t.Errorf("explorer record = %+v, want valid OS binary", explorer)
	}
	if !strings.Contains(explorer.Signer, "Microsoft Windows") {
		t.Errorf("explorer signer = %q", explorer.Signer)
	}

	fake := cache[NormalizePath(`C:\Temp\fake.exe`)]
	if fake.Valid || fake.OSBinary {
		t.Errorf("unsigned binary parsed as %+v", fake)
	}

	broken := cache[NormalizePath(`C:\Temp\broken.exe`)]
	if broken.Valid {
		t.Errorf("HashMismatch status parsed as valid")
	}
	if !broken.OSBinary {
		t.Errorf("OSBinary flag lost for tampered binary")
	}
}

func TestParseOutputIgnoresNoise(t *testing.T) {
	cache := parseOutput("some warning text\n\nC:\\a.exe|Valid|True|X\n")
	if len(cache) != 1 {
		t.Fatalf("parsed %d records, want 1", len(cache))
	}
}

func TestBuildScriptEscapesQuotes(t *testing.T) {
	script := buildScript([]string{`C:\O'Brien\app.exe`})
	if !strings.Contains(script, "O''Brien") {
		t.Fatalf("single quote not doubled in script: %s", script)
	}
	if !strings.Contains(script, "Get-AuthenticodeSignature") {
		t.Fatalf("script missing verification cmdlet")
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{`C:\a.exe`, "", `C:\b.exe`, `C:\a.exe`})
	if len(got) != 2 {
		t.Fatalf("dedupe kept %d paths, want 2", len(got))
	}
}
