package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dazzletools/wingather/internal/config"
	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/report"
	"github.com/dazzletools/wingather/internal/scan"
	"github.com/dazzletools/wingather/internal/signature"
	"github.com/dazzletools/wingather/internal/statefile"
)

// stringList collects repeatable flag values.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type gatherFlags struct {
	dryRun         bool
	all            bool
	showHidden     bool
	includeVirtual bool
	jsonOut        bool
	monitor        int
	filter         string
	exclude        string
	excludeProcs   stringList
	excludeFile    string
	trustProcs     stringList
	trustFile      string
	noDefaultTrust bool
	configPath     string
	verbose        bool
}

func addGatherFlags(fs *flag.FlagSet, gf *gatherFlags) {
	fs.BoolVar(&gf.dryRun, "dry-run", false, "Preview actions without touching any window")
	fs.BoolVar(&gf.dryRun, "n", false, "Shorthand for --dry-run")
	fs.BoolVar(&gf.all, "all", false, "Act on every window, not just suspicious ones")
	fs.BoolVar(&gf.all, "a", false, "Shorthand for --all")
	fs.BoolVar(&gf.showHidden, "show-hidden", false, "Include hidden windows and make them visible")
	fs.BoolVar(&gf.includeVirtual, "include-virtual", false, "Include windows on other virtual desktops")
	fs.BoolVar(&gf.jsonOut, "json", false, "Emit results as JSON instead of a table")
	fs.IntVar(&gf.monitor, "monitor", 0, "Target monitor index (0 = primary)")
	fs.IntVar(&gf.monitor, "m", 0, "Shorthand for --monitor")
	fs.StringVar(&gf.filter, "filter", "", "Only include windows whose title/process matches this glob")
	fs.StringVar(&gf.filter, "f", "", "Shorthand for --filter")
	fs.StringVar(&gf.exclude, "exclude", "", "Skip windows whose title/process matches this glob")
	fs.StringVar(&gf.exclude, "x", "", "Shorthand for --exclude")
	fs.Var(&gf.excludeProcs, "exclude-process", "Skip windows of this process (repeatable)")
	fs.Var(&gf.excludeProcs, "xp", "Shorthand for --exclude-process")
	fs.StringVar(&gf.excludeFile, "exclude-file", "", "File of process names to exclude, one per line")
	fs.Var(&gf.trustProcs, "trust", "Trust this process name, skip flagging it (repeatable)")
	fs.Var(&gf.trustProcs, "tp", "Shorthand for --trust")
	fs.StringVar(&gf.trustFile, "trust-file", "", "File of process names to trust, one per line")
	fs.BoolVar(&gf.noDefaultTrust, "no-default-trust", false, "Ignore the built-in trust list and auto-trust")
	fs.BoolVar(&gf.noDefaultTrust, "ndt", false, "Shorthand for --no-default-trust")
	fs.StringVar(&gf.configPath, "config", "", "Config file path (default ~/.config/wingather/config.yaml)")
	fs.BoolVar(&gf.verbose, "v", false, "Verbose logging")
}

func runGather(args []string) int {
	fs := flag.NewFlagSet("gather", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var gf gatherFlags
	addGatherFlags(fs, &gf)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wingather gather [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	return gather(&gf, false)
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var gf gatherFlags
	addGatherFlags(fs, &gf)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wingather list [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Enumerates and scores windows without planning any action.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	return gather(&gf, true)
}

func gather(gf *gatherFlags, listOnly bool) int {
	log := newLogger(gf.verbose)

	if gf.showHidden && !listOnly && !gf.dryRun {
		fmt.Fprintln(os.Stderr, "WARNING: --show-hidden reveals windows their owners chose to hide.")
		fmt.Fprintln(os.Stderr, "Some may belong to background services. Run 'wingather undo' to re-hide them.")
	}

	cfg := config.Load(gf.configPath, log)

	excludeProcs := append([]string(nil), gf.excludeProcs...)
	excludeProcs = append(excludeProcs, cfg.ExcludeProcesses...)
	if gf.excludeFile != "" {
		excludeProcs = append(excludeProcs, readListFile(gf.excludeFile)...)
	}

	trustProcs := append([]string(nil), gf.trustProcs...)
	if gf.trustFile != "" {
		trustProcs = append(trustProcs, readListFile(gf.trustFile)...)
	}

	opts := scan.Options{
		ListOnly:         listOnly,
		DryRun:           gf.dryRun,
		GatherAll:        gf.all,
		ShowHidden:       gf.showHidden,
		IncludeVirtual:   gf.includeVirtual,
		MonitorIndex:     gf.monitor,
		Filter:           gf.filter,
		Exclude:          gf.exclude,
		ExcludeProcesses: excludeProcs,
		TrustedProcesses: trustProcs,
		ExtraTrust:       cfg.Trust,
		ExtraDeny:        cfg.Deny,
		NoDefaultTrust:   gf.noDefaultTrust,
		Verifier:         &signature.Verifier{Log: log},
		Log:              log,
	}
	if cfg.Weights != nil {
		opts.Weights = *cfg.Weights
	}

	backend, err := platform.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	res, err := scan.Run(context.Background(), backend, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !listOnly && !gf.dryRun && len(res.Revealed) > 0 {
		shown := make([]statefile.ShownWindow, 0, len(res.Revealed))
		for _, r := range res.Revealed {
			shown = append(shown, statefile.ShownWindow{
				Handle:  uint64(r.Handle),
				PID:     r.PID,
				Process: r.Process,
				Title:   r.Title,
			})
		}
		if path, err := statefile.Save(shown); err != nil {
			log.Warn("could not save undo state", "error", err)
		} else {
			log.Info("undo state saved", "path", path, "windows", len(shown))
		}
	}

	if gf.jsonOut {
		if err := report.WriteJSON(os.Stdout, res.Records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	mode := report.ModeLive
	switch {
	case listOnly:
		mode = report.ModeList
	case gf.dryRun:
		mode = report.ModeDryRun
	}
	styled := term.IsTerminal(int(os.Stdout.Fd()))
	report.WriteTable(os.Stdout, res.Records, mode, styled)
	return 0
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// readListFile reads one name per line, skipping blanks and # comments. A
// missing file warns rather than aborting so a shared command line still
// works across machines.
func readListFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot read %s: %v\n", path, err)
		return nil
	}
	defer f.Close()
	return parseListLines(f)
}

func parseListLines(r io.Reader) []string {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
