// Package trust matches window processes against declarative trust rules
// and produces a three-way verdict: no match, trusted, or matched-but-failed
// verification.
package trust

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/dazzletools/wingather/internal/signature"
)

// Trust entry sources and verification methods.
const (
	SourceDefault         = "default"
	SourceUser            = "user"
	SourceMicrosoftSigned = "microsoft-signed"

	VerifyMicrosoftSigned = "microsoft-signed"
)

// Entry is one declarative trust rule. Pattern globs are matched
// case-insensitively against the process base name.
type Entry struct {
	Pattern       string   `yaml:"pattern"`
	Source        string   `yaml:"source,omitempty"`
	Verify        string   `yaml:"verify,omitempty"`
	ExpectedPaths []string `yaml:"expected_paths,omitempty"`
	Reason        string   `yaml:"reason,omitempty"`
}

// VerdictKind discriminates the three trust outcomes.
type VerdictKind int

const (
	// KindNoMatch means no entry's pattern matched the process name.
	KindNoMatch VerdictKind = iota
	// KindTrusted means an entry matched and passed any required checks.
	KindTrusted
	// KindFailed means an entry matched by name but verification failed.
	// A failed verdict is worse than no match: something carries a
	// recognized name without the credentials to back it.
	KindFailed
)

// Verdict is the result of checking one window against the rule list.
type Verdict struct {
	Kind   VerdictKind
	Entry  *Entry
	Reason string
}

// NoMatch returns the verdict for a process no rule covers.
func NoMatch() Verdict { return Verdict{Kind: KindNoMatch} }

// TrustedBy returns a trusted verdict attributed to the matching entry.
func TrustedBy(e *Entry) Verdict { return Verdict{Kind: KindTrusted, Entry: e} }

// FailedFor returns a failed verdict with the reason verification broke down.
func FailedFor(e *Entry, reason string) Verdict {
	return Verdict{Kind: KindFailed, Entry: e, Reason: reason}
}

// Check evaluates entries in order against the lower-cased process name; the
// first pattern match wins and no further entries are tried. Entries with a
// verify requirement consult expected paths and then the signature cache;
// a missing cache record fails closed.
func Check(process, exePath string, entries []Entry, sigs signature.Cache) Verdict {
	procLower := strings.ToLower(process)

	for i := range entries {
		entry := &entries[i]
		if !matchName(procLower, entry.Pattern) {
			continue
		}

		if entry.Verify == "" {
			return TrustedBy(entry)
		}

		if len(entry.ExpectedPaths) > 0 && !pathExpected(exePath, entry.ExpectedPaths) {
			actual := exePath
			if actual == "" {
				actual = "unknown"
			}
			return FailedFor(entry, "unexpected-path:"+actual)
		}

		if entry.Verify == VerifyMicrosoftSigned && exePath != "" {
			rec, ok := sigs[signature.NormalizePath(exePath)]
			switch {
			case !ok:
				return FailedFor(entry, "signature-not-checked")
			case !rec.Valid:
				return FailedFor(entry, "invalid-signature")
			case !rec.OSBinary:
				return FailedFor(entry, "not-os-binary")
			}
		}

		return TrustedBy(entry)
	}

	return NoMatch()
}

// Denied reports whether a process name matches any deny-list pattern.
// Deny-listed binaries are never auto-trusted, signed or not.
func Denied(process string, denylist []string) bool {
	procLower := strings.ToLower(process)
	for _, pattern := range denylist {
		if matchName(procLower, pattern) {
			return true
		}
	}
	return false
}

// matchName does a case-insensitive glob match with no separator handling,
// so "*" spans the whole name.
func matchName(nameLower, pattern string) bool {
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return false
	}
	return g.Match(nameLower)
}

// pathExpected checks the normalized executable path against expected path
// globs. Wildcards tolerate OS-generated path segments such as packaged-app
// hash directories.
func pathExpected(exePath string, expected []string) bool {
	if exePath == "" {
		return false
	}
	norm := signature.NormalizePath(exePath)
	for _, pattern := range expected {
		g, err := glob.Compile(signature.NormalizePath(pattern))
		if err != nil {
			continue
		}
		if g.Match(norm) {
			return true
		}
	}
	return false
}
