package trust

import (
	"bytes"
	_ "embed"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_trust.yaml
var defaultTrustYAML []byte

//go:embed denylist.yaml
var denylistYAML []byte

type trustFile struct {
	Processes []Entry `yaml:"processes"`
}

type denyFile struct {
	Patterns []string `yaml:"patterns"`
}

// DefaultEntries returns the built-in trust rules with Source set to
// "default". A malformed embedded file yields an empty list and a warning,
// never an error.
func DefaultEntries(log *slog.Logger) []Entry {
	var f trustFile
	if err := decodeStrict(defaultTrustYAML, &f); err != nil {
		warn(log, "could not load default trust list", err)
		return nil
	}
	for i := range f.Processes {
		if f.Processes[i].Source == "" {
			f.Processes[i].Source = SourceDefault
		}
	}
	return f.Processes
}

// DefaultDenylist returns the built-in never-auto-trust name patterns,
// lowercased.
func DefaultDenylist(log *slog.Logger) []string {
	var f denyFile
	if err := decodeStrict(denylistYAML, &f); err != nil {
		warn(log, "could not load deny list", err)
		return nil
	}
	out := make([]string, 0, len(f.Patterns))
	for _, p := range f.Patterns {
		out = append(out, strings.ToLower(p))
	}
	return out
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func warn(log *slog.Logger, msg string, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.Warn(msg, "error", err)
}
