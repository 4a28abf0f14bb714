package scan

import (
	"context"
	"log/slog"

	"github.com/dazzletools/wingather/internal/concern"
	"github.com/dazzletools/wingather/internal/signature"
	"github.com/dazzletools/wingather/internal/trust"
)

// SignatureVerifier runs the batched external signature check. Satisfied by
// *signature.Verifier; tests substitute a canned cache.
type SignatureVerifier interface {
	Verify(ctx context.Context, paths []string) signature.Cache
}

// Options parameterizes one pipeline run.
type Options struct {
	// Modes. ListOnly enumerates and scores without planning actions.
	// DryRun plans actions and targets without touching any window.
	ListOnly bool
	DryRun   bool

	// GatherAll acts on every window instead of suspicious-only. An
	// explicit Filter pattern implies the same, the user asked for those
	// windows by name.
	GatherAll      bool
	ShowHidden     bool
	IncludeVirtual bool

	MonitorIndex int

	// Filtering. Filter/Exclude glob against "title process" lowercased;
	// ExcludeProcesses globs against the process name alone.
	Filter           string
	Exclude          string
	ExcludeProcesses []string

	// Trust policy. TrustedProcesses become user entries with no
	// verification. NoDefaultTrust drops the packaged defaults and
	// disables auto-trust promotion.
	TrustedProcesses []string
	ExtraTrust       []trust.Entry
	ExtraDeny        []string
	NoDefaultTrust   bool

	Weights concern.Weights

	Verifier SignatureVerifier
	Log      *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

// actOnAll reports whether non-suspicious windows get actions too.
func (o *Options) actOnAll() bool {
	return o.GatherAll || o.Filter != ""
}
