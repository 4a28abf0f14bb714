// Package signature verifies Authenticode signatures for executables by
// batching all paths into a single PowerShell invocation.
package signature

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path"
	"sort"
	"strings"
	"time"
)

// Timeout bounds the external verification call. One PowerShell spawn for a
// whole window set should finish well under this.
const Timeout = 30 * time.Second

// Record is the verification result for one executable.
type Record struct {
	Valid    bool
	OSBinary bool
	Signer   string
}

// Cache maps normalized executable paths to verification results.
type Cache map[string]Record

// NormalizePath lowercases, forward-slashes, and cleans a path so that
// case and separator variants of the same file map to the same cache key.
// Backslashes are replaced explicitly: the cache is keyed by Windows paths
// regardless of the platform the pipeline runs on.
func NormalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(strings.ToLower(p), "\\", "/"))
}

// Verifier runs batch signature checks. The zero value uses the default
// timeout and the system PowerShell.
type Verifier struct {
	Log *slog.Logger
}

// Verify checks all given executable paths in one external call and returns
// the results keyed by normalized path. On timeout or when the verification
// tool is unavailable it logs a warning and returns an empty cache so that
// callers fail closed.
func (v *Verifier) Verify(ctx context.Context, paths []string) Cache {
	log := v.Log
	if log == nil {
		log = slog.Default()
	}

	unique := dedupe(paths)
	if len(unique) == 0 {
		return Cache{}
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "powershell.exe",
		"-NoProfile", "-ExecutionPolicy", "Bypass",
		"-Command", buildScript(unique))
	out, err := cmd.Output()
	if err != nil {
		log.Warn("signature verification failed", "error", err, "paths", len(unique))
		return Cache{}
	}
	return parseOutput(string(out))
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var unique []string
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	sort.Strings(unique)
	return unique
}

// buildScript emits one Get-AuthenticodeSignature statement per path, each
// printing "path|Status|IsOSBinary|SignerSubject" on its own line.
func buildScript(paths []string) string {
	var b strings.Builder
	for i, p := range paths {
		if i > 0 {
			b.WriteString("; ")
		}
		escaped := strings.ReplaceAll(p, "'", "''")
		fmt.Fprintf(&b,
			"$s = Get-AuthenticodeSignature '%s'; "+
				"Write-Output ('%s|' + $s.Status + '|' + $s.IsOSBinary + '|' + $s.SignerCertificate.Subject)",
			escaped, escaped)
	}
	return b.String()
}

func parseOutput(out string) Cache {
	cache := Cache{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(strings.TrimRight(line, "\r"), "|", 4)
		if len(parts) < 3 {
			continue
		}
		rec := Record{
			Valid:    strings.TrimSpace(parts[1]) == "Valid",
			OSBinary: strings.EqualFold(strings.TrimSpace(parts[2]), "true"),
		}
		if len(parts) > 3 {
			rec.Signer = strings.TrimSpace(parts[3])
		}
		cache[NormalizePath(parts[0])] = rec
	}
	return cache
}
