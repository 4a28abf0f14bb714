package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/dazzletools/wingather/internal/cascade"
	"github.com/dazzletools/wingather/internal/concern"
	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/signature"
	"github.com/dazzletools/wingather/internal/trust"
)

// Result is what one pipeline run produced.
type Result struct {
	// Records in report order: suspicious windows severity-descending,
	// then the rest.
	Records []*Record
	// Revealed holds hidden windows made visible in execute mode, for the
	// undo record.
	Revealed []*Record
	// Area is the work area actions were planned against.
	Area platform.Rect
}

// Run executes the full pipeline against one snapshot: enumerate, filter,
// score, check trust, promote, then plan or perform actions per window.
func Run(ctx context.Context, backend platform.Backend, opts Options) (*Result, error) {
	log := opts.logger()

	if !backend.Elevated() {
		log.Warn("not running elevated; windows of privileged processes may not be movable")
	}

	area, err := backend.WorkArea(opts.MonitorIndex)
	if err != nil {
		return nil, fmt.Errorf("resolve work area: %w", err)
	}
	log.Debug("target work area", "x", area.X, "y", area.Y, "w", area.Width, "h", area.Height)

	wins, err := backend.Enumerate(opts.ShowHidden || opts.IncludeVirtual)
	if err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}
	monitors, err := backend.Monitors()
	if err != nil {
		return nil, fmt.Errorf("enumerate monitors: %w", err)
	}

	records := make([]*Record, 0, len(wins))
	for _, w := range wins {
		r := &Record{Window: w}
		r.State, r.OffScreen = Classify(w, monitors)
		records = append(records, r)
	}
	log.Info("found windows", "count", len(records))

	if opts.Filter != "" || opts.Exclude != "" {
		records = applyFilters(records, opts.Filter, opts.Exclude)
		log.Info("after pattern filtering", "count", len(records))
	}
	if len(opts.ExcludeProcesses) > 0 {
		before := len(records)
		records = excludeByProcess(records, opts.ExcludeProcesses)
		if n := before - len(records); n > 0 {
			log.Info("excluded by process name", "count", n)
		}
	}

	entries := trustEntries(&opts)
	sigs := verifyMatching(ctx, records, entries, &opts)

	weights := opts.Weights
	if weights == (concern.Weights{}) {
		weights = concern.DefaultWeights()
	}
	score(records, entries, sigs, weights)

	if !opts.NoDefaultTrust {
		verifySuspicious(ctx, records, sigs, &opts)
		deny := append(trust.DefaultDenylist(log), opts.ExtraDeny...)
		promote(records, sigs, deny, log)
	}

	logCounts(records, log)

	res := &Result{Area: area}
	if opts.ListOnly {
		res.Records = ordered(records)
		return res, nil
	}

	res.Revealed = act(backend, records, area, &opts)
	res.Records = ordered(records)
	return res, nil
}

// trustEntries assembles the rule list: packaged defaults first (unless
// suppressed), then config additions, then user patterns.
func trustEntries(opts *Options) []trust.Entry {
	var entries []trust.Entry
	if !opts.NoDefaultTrust {
		entries = trust.DefaultEntries(opts.logger())
		if len(entries) > 0 {
			opts.logger().Debug("loaded default trust entries", "count", len(entries))
		}
	}
	entries = append(entries, opts.ExtraTrust...)
	for _, p := range opts.TrustedProcesses {
		entries = append(entries, trust.Entry{Pattern: p, Source: trust.SourceUser})
	}
	return entries
}

// verifyMatching batch-checks signatures for every executable whose process
// name matches a verify-requiring entry, so the external call happens once
// up front.
func verifyMatching(ctx context.Context, records []*Record, entries []trust.Entry, opts *Options) signature.Cache {
	if opts.Verifier == nil || len(entries) == 0 {
		return signature.Cache{}
	}

	var globs []glob.Glob
	for _, e := range entries {
		if e.Verify == "" {
			continue
		}
		if g, err := glob.Compile(strings.ToLower(e.Pattern)); err == nil {
			globs = append(globs, g)
		}
	}
	if len(globs) == 0 {
		return signature.Cache{}
	}

	var paths []string
	for _, r := range records {
		if r.ExePath == "" {
			continue
		}
		procLower := strings.ToLower(r.Process)
		for _, g := range globs {
			if g.Match(procLower) {
				paths = append(paths, r.ExePath)
				break
			}
		}
	}
	if len(paths) == 0 {
		return signature.Cache{}
	}
	opts.logger().Debug("verifying signatures", "paths", len(paths))
	return opts.Verifier.Verify(ctx, paths)
}

// verifySuspicious extends the cache with signatures for suspicious
// executables not already covered, feeding auto-trust promotion.
func verifySuspicious(ctx context.Context, records []*Record, sigs signature.Cache, opts *Options) {
	if opts.Verifier == nil {
		return
	}
	var paths []string
	for _, r := range records {
		if !r.Suspicious || r.ExePath == "" {
			continue
		}
		if _, ok := sigs[signature.NormalizePath(r.ExePath)]; !ok {
			paths = append(paths, r.ExePath)
		}
	}
	if len(paths) == 0 {
		return
	}
	opts.logger().Debug("checking signatures of suspicious executables", "paths", len(paths))
	for k, v := range opts.Verifier.Verify(ctx, paths) {
		sigs[k] = v
	}
}

// score runs trust checks and the concern scorer over every record,
// applying the trusted/suspicious split.
func score(records []*Record, entries []trust.Entry, sigs signature.Cache, weights concern.Weights) {
	for _, r := range records {
		verdict := trust.Check(r.Process, r.ExePath, entries, sigs)
		a := concern.Evaluate(concern.Subject{
			State:     r.State,
			OffScreen: r.OffScreen,
			X:         r.Bounds.X,
			Y:         r.Bounds.Y,
			Width:     r.Bounds.Width,
			Height:    r.Bounds.Height,
			Class:     r.Class,
			Cloak:     r.Cloak,
		}, verdict, weights)

		if a.Score == 0 {
			if verdict.Kind == trust.KindTrusted {
				applyTrust(r, verdict)
			}
			continue
		}

		if verdict.Kind == trust.KindTrusted {
			applyTrust(r, verdict)
			r.WouldConcernReason = a.Reason()
			r.WouldConcernScore = a.Score
			r.WouldConcernLevel = a.Level
			continue
		}

		r.Suspicious = true
		r.ConcernReason = a.Reason()
		r.ConcernScore = a.Score
		r.ConcernLevel = a.Level
	}
}

func applyTrust(r *Record, v trust.Verdict) {
	r.Trusted = true
	r.TrustSource = v.Entry.Source
	r.TrustPattern = v.Entry.Pattern
	r.TrustVerified = v.Entry.Verify
}

// act processes windows: non-suspicious first, then suspicious in ascending
// severity so the most severe ends up frontmost, with cascade offsets
// assigned center-first to the most severe.
func act(backend platform.Backend, records []*Record, area platform.Rect, opts *Options) []*Record {
	suspicious, normal := split(records)

	offsets := cascadeFor(len(suspicious))

	var revealed []*Record
	process := func(r *Record, offX, offY int) {
		if opts.DryRun {
			simulate(r, area, opts, offX, offY)
			return
		}
		wasHidden := r.State == platform.StateHidden
		if execute(backend, r, area, opts, offX, offY) && wasHidden {
			revealed = append(revealed, r)
		}
	}

	for _, r := range normal {
		if !opts.actOnAll() {
			r.Action = "skip:normal"
			continue
		}
		process(r, 0, 0)
	}
	for i, r := range suspicious {
		offX, offY := 0, 0
		if i < len(offsets) {
			offX, offY = offsets[i][0], offsets[i][1]
		}
		process(r, offX, offY)
	}
	return revealed
}

// cascadeFor returns offsets in processing order: the center slot (index 0
// of the cascade) goes to the most severe window, which is processed last.
func cascadeFor(n int) [][2]int {
	offs := cascade.Offsets(n)
	for i, j := 0, len(offs)-1; i < j; i, j = i+1, j-1 {
		offs[i], offs[j] = offs[j], offs[i]
	}
	return offs
}

// split separates suspicious records, sorted least severe first (level 5
// before level 1) for processing order.
func split(records []*Record) (suspicious, normal []*Record) {
	for _, r := range records {
		if r.Suspicious {
			suspicious = append(suspicious, r)
		} else {
			normal = append(normal, r)
		}
	}
	sort.SliceStable(suspicious, func(i, j int) bool {
		return suspicious[i].ConcernLevel > suspicious[j].ConcernLevel
	})
	return suspicious, normal
}

// ordered returns the report order: suspicious severity-descending, then
// everything else in discovery order.
func ordered(records []*Record) []*Record {
	suspicious, normal := split(records)
	out := make([]*Record, 0, len(records))
	for i := len(suspicious) - 1; i >= 0; i-- {
		out = append(out, suspicious[i])
	}
	return append(out, normal...)
}

func logCounts(records []*Record, log *slog.Logger) {
	suspicious, trusted := 0, 0
	for _, r := range records {
		if r.Suspicious {
			suspicious++
		}
		if r.Trusted {
			trusted++
		}
	}
	if suspicious > 0 {
		log.Info("flagged suspicious windows", "count", suspicious)
	}
	if trusted > 0 {
		log.Info("trusted windows, flagging suppressed", "count", trusted)
	}
}
