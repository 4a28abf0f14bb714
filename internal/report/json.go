package report

import (
	"encoding/json"
	"io"

	"github.com/dazzletools/wingather/internal/scan"
)

type position struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w,omitempty"`
	H int `json:"h,omitempty"`
}

type entry struct {
	Handle          uint64    `json:"handle"`
	Title           string    `json:"title"`
	Class           string    `json:"class"`
	Process         string    `json:"process"`
	PID             int       `json:"pid"`
	State           string    `json:"state"`
	Action          string    `json:"action,omitempty"`
	CurrentPosition position  `json:"current_position"`
	TargetPosition  *position `json:"target_position,omitempty"`

	ConcernLevel  int    `json:"concern_level,omitempty"`
	ConcernScore  int    `json:"concern_score,omitempty"`
	ConcernReason string `json:"concern_reason,omitempty"`

	Trusted            bool   `json:"trusted,omitempty"`
	TrustSource        string `json:"trust_source,omitempty"`
	TrustVerified      string `json:"trust_verified,omitempty"`
	WouldConcernLevel  int    `json:"would_concern_level,omitempty"`
	WouldConcernReason string `json:"would_concern_reason,omitempty"`
}

// WriteJSON emits the full per-window records as indented JSON.
func WriteJSON(w io.Writer, records []*scan.Record) error {
	out := make([]entry, 0, len(records))
	for _, r := range records {
		e := entry{
			Handle:  uint64(r.Handle),
			Title:   r.Title,
			Class:   r.Class,
			Process: r.Process,
			PID:     r.PID,
			State:   string(r.State),
			Action:  r.Action,
			CurrentPosition: position{
				X: r.Bounds.X, Y: r.Bounds.Y,
				W: r.Bounds.Width, H: r.Bounds.Height,
			},
		}
		if r.HasTarget {
			e.TargetPosition = &position{X: r.TargetX, Y: r.TargetY}
		}
		if r.Suspicious {
			e.ConcernLevel = r.ConcernLevel
			e.ConcernScore = r.ConcernScore
			e.ConcernReason = r.ConcernReason
		}
		if r.Trusted {
			e.Trusted = true
			e.TrustSource = r.TrustSource
			e.TrustVerified = r.TrustVerified
			e.WouldConcernLevel = r.WouldConcernLevel
			e.WouldConcernReason = r.WouldConcernReason
		}
		out = append(out, e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
