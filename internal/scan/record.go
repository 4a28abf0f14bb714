// Package scan drives the inspection pipeline: classify each window's
// visibility state, score it for concern, check trust, and plan (or carry
// out) a remediation action per window.
package scan

import "github.com/dazzletools/wingather/internal/platform"

// Record is the per-window working state as it moves through the pipeline.
// Each record is owned exclusively during its pass; nothing is shared.
type Record struct {
	platform.Window

	State     platform.State
	OffScreen bool

	Suspicious    bool
	ConcernScore  int
	ConcernLevel  int
	ConcernReason string

	Trusted       bool
	TrustSource   string
	TrustPattern  string
	TrustVerified string

	// What would have been flagged had trust not suppressed it.
	WouldConcernScore  int
	WouldConcernLevel  int
	WouldConcernReason string

	Action    string
	HasTarget bool
	TargetX   int
	TargetY   int
}

func (r *Record) setTarget(x, y int) {
	r.HasTarget = true
	r.TargetX = x
	r.TargetY = y
}
