package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dazzletools/wingather/internal/trust"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"), quietLog())
	if len(cfg.Trust) != 0 || len(cfg.Deny) != 0 || cfg.Weights != nil {
		t.Fatalf("missing file produced non-empty config: %+v", cfg)
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
trust:
  - pattern: mytool.exe
    reason: in-house agent
  - pattern: corpapp*.exe
    source: user
deny:
  - sketchy.exe
weights:
  off-screen: 6
exclude_processes:
  - slack.exe
`)
	cfg := Load(path, quietLog())
	if len(cfg.Trust) != 2 {
		t.Fatalf("trust entries = %d", len(cfg.Trust))
	}
	if cfg.Trust[0].Source != trust.SourceUser {
		t.Fatalf("missing source not defaulted to user: %q", cfg.Trust[0].Source)
	}
	if cfg.Weights == nil || cfg.Weights.OffScreen != 6 {
		t.Fatalf("weights = %+v", cfg.Weights)
	}
	if len(cfg.Deny) != 1 || len(cfg.ExcludeProcesses) != 1 {
		t.Fatalf("deny=%v exclude=%v", cfg.Deny, cfg.ExcludeProcesses)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "trustt:\n  - pattern: oops.exe\n")
	cfg := Load(path, quietLog())
	if len(cfg.Trust) != 0 {
		t.Fatal("typo'd key silently accepted")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "trust: [unclosed\n")
	cfg := Load(path, quietLog())
	if cfg == nil || len(cfg.Trust) != 0 {
		t.Fatal("malformed config not replaced with empty config")
	}
}
