package scan

import (
	"strings"

	"github.com/gobwas/glob"
)

// applyFilters keeps records whose "title process" string matches the
// include pattern (when set) and does not match the exclude pattern.
func applyFilters(records []*Record, include, exclude string) []*Record {
	var incG, excG glob.Glob
	if include != "" {
		incG = compileLower(include)
	}
	if exclude != "" {
		excG = compileLower(exclude)
	}

	var out []*Record
	for _, r := range records {
		subject := strings.ToLower(r.Title + " " + r.Process)
		if incG != nil && !incG.Match(subject) {
			continue
		}
		if excG != nil && excG.Match(subject) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// excludeByProcess drops records whose process name matches any pattern.
func excludeByProcess(records []*Record, patterns []string) []*Record {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		if g := compileLower(p); g != nil {
			globs = append(globs, g)
		}
	}

	var out []*Record
next:
	for _, r := range records {
		procLower := strings.ToLower(r.Process)
		for _, g := range globs {
			if g.Match(procLower) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// compileLower builds a case-insensitive glob; a malformed pattern matches
// nothing rather than aborting the run.
func compileLower(pattern string) glob.Glob {
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil
	}
	return g
}
