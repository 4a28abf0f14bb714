package scan

import (
	"log/slog"

	"github.com/dazzletools/wingather/internal/signature"
	"github.com/dazzletools/wingather/internal/trust"
)

// promote clears the suspicious flag on windows whose executables carry a
// valid OS-attributed signature, moving the prior assessment into the
// would-flag shadow fields. Deny-listed names stay flagged no matter how
// valid the signature: default-trust the OS, never default-trust a binary
// known to be abusable.
func promote(records []*Record, sigs signature.Cache, denylist []string, log *slog.Logger) {
	promoted := 0
	for _, r := range records {
		if !r.Suspicious || r.ExePath == "" {
			continue
		}
		if trust.Denied(r.Process, denylist) {
			log.Debug("auto-trust skipped, deny-listed", "process", r.Process)
			continue
		}
		rec, ok := sigs[signature.NormalizePath(r.ExePath)]
		if !ok || !rec.Valid || !rec.OSBinary {
			continue
		}

		r.Trusted = true
		r.TrustSource = trust.SourceMicrosoftSigned
		r.TrustVerified = trust.VerifyMicrosoftSigned
		r.WouldConcernReason = r.ConcernReason
		r.WouldConcernScore = r.ConcernScore
		r.WouldConcernLevel = r.ConcernLevel
		r.Suspicious = false
		r.ConcernReason = ""
		r.ConcernScore = 0
		r.ConcernLevel = 0
		promoted++
	}
	if promoted > 0 {
		log.Info("auto-trusted signed windows", "count", promoted)
	}
}
