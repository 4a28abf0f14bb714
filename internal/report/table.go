// Package report renders pipeline results as an aligned text table or JSON.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dazzletools/wingather/internal/scan"
)

// Mode selects the table header and columns.
type Mode string

const (
	ModeList   Mode = "list"
	ModeDryRun Mode = "dry-run"
	ModeLive   Mode = "live"
)

var (
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	concernStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func levelLabel(level int) string {
	switch level {
	case 1, 2:
		return "ALERT"
	case 3:
		return "CONCERN"
	default:
		return "NOTE"
	}
}

func levelStyle(level int) lipgloss.Style {
	switch level {
	case 1, 2:
		return alertStyle
	case 3:
		return concernStyle
	default:
		return noteStyle
	}
}

type column struct {
	label string
	width int
	gap   int
	right bool
}

// WriteTable renders the report. styled enables color; pass false when
// stdout is not a terminal.
func WriteTable(w io.Writer, records []*scan.Record, mode Mode, styled bool) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No windows found.")
		return
	}

	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	showTarget := mode != ModeList

	header := map[Mode]string{
		ModeList:   "DISCOVERED",
		ModeDryRun: "DRY RUN",
		ModeLive:   "GATHERED",
	}[mode]
	fmt.Fprintf(w, "\n  %s: %d window(s)\n", header, len(records))
	if mode == ModeDryRun {
		fmt.Fprintln(w, "  (no windows will be moved)")
	}
	fmt.Fprintln(w)

	columns := []column{
		{"", 4, 1, false},
		{"HWND", 10, 2, true},
		{"PID", 7, 2, true},
		{"STATE", 12, 2, false},
	}
	if showTarget {
		columns = append(columns,
			column{"ACTION", 28, 2, false},
			column{"CURRENT POS", 22, 2, false},
			column{"TARGET POS", 14, 2, false})
	} else {
		columns = append(columns, column{"ACTION", 12, 2, false})
	}
	columns = append(columns,
		column{"PROCESS", 24, 2, false},
		column{"TITLE", 35, 0, false})

	starts := make([]int, len(columns))
	pos := 0
	for i, c := range columns {
		starts[i] = pos
		pos += c.width + c.gap
	}

	var hdr, sep []cell
	for i, c := range columns {
		if c.label == "" {
			hdr = append(hdr, cell{starts[i], strings.Repeat(" ", c.width)})
			sep = append(sep, cell{starts[i], strings.Repeat(" ", c.width)})
			continue
		}
		hdr = append(hdr, cell{starts[i], pad(c.label, c.width, c.right)})
		sep = append(sep, cell{starts[i], strings.Repeat("-", c.width)})
	}
	fmt.Fprintln(w, renderWrapped(hdr))
	fmt.Fprintln(w, renderWrapped(sep))

	for _, r := range records {
		action := r.Action
		if action == "" {
			if mode == ModeList {
				action = "--"
			} else {
				action = "skipped"
			}
		}
		title := r.Title
		if title == "" {
			title = "<untitled>"
		}
		title = truncate(title, 50)
		proc := r.Process
		if proc == "" {
			proc = "<unknown>"
		}
		proc = truncate(proc, 20)

		flag := "    "
		if r.Suspicious {
			flag = fmt.Sprintf("[!%d]", r.ConcernLevel)
		}

		cells := []cell{
			{starts[0], flag},
			{starts[1], pad(fmt.Sprintf("%d", uint64(r.Handle)), 10, true)},
			{starts[2], pad(fmt.Sprintf("%d", r.PID), 7, true)},
			{starts[3], string(r.State)},
		}
		next := 4
		if showTarget {
			cur := fmt.Sprintf("(%d,%d) %dx%d", r.Bounds.X, r.Bounds.Y, r.Bounds.Width, r.Bounds.Height)
			tgt := ""
			if r.HasTarget {
				tgt = fmt.Sprintf("-> (%d,%d)", r.TargetX, r.TargetY)
			}
			cells = append(cells,
				cell{starts[next], action},
				cell{starts[next+1], cur},
				cell{starts[next+2], tgt})
			next += 3
		} else {
			cells = append(cells, cell{starts[next], action})
			next++
		}
		cells = append(cells,
			cell{starts[next], proc},
			cell{starts[next+1], title})

		line := renderWrapped(cells)
		if r.Suspicious && styled {
			line = levelStyle(r.ConcernLevel).Render(line)
		}
		fmt.Fprintln(w, line)

		if r.Suspicious {
			detail := fmt.Sprintf("      ** %s %d: %s", levelLabel(r.ConcernLevel), r.ConcernLevel, r.ConcernReason)
			fmt.Fprintln(w, paint(levelStyle(r.ConcernLevel), detail))
		}
	}
	fmt.Fprintln(w)

	writeSummary(w, records, mode, paint)
}

func writeSummary(w io.Writer, records []*scan.Record, mode Mode, paint func(lipgloss.Style, string) string) {
	if mode != ModeList {
		actions := map[string]int{}
		for _, r := range records {
			a := r.Action
			if a == "" {
				a = "skipped"
			}
			actions[a]++
		}
		keys := make([]string, 0, len(actions))
		for k := range actions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%d %s", actions[k], k)
		}
		fmt.Fprintf(w, "  Summary: %s\n", strings.Join(parts, ", "))
	}

	var flagged []*scan.Record
	for _, r := range records {
		if r.Suspicious {
			flagged = append(flagged, r)
		}
	}
	if len(flagged) > 0 {
		byLevel := map[int]int{}
		for _, r := range flagged {
			byLevel[r.ConcernLevel]++
		}
		var levels []int
		for l := range byLevel {
			levels = append(levels, l)
		}
		sort.Ints(levels)
		parts := make([]string, len(levels))
		for i, l := range levels {
			parts[i] = fmt.Sprintf("%dx level %d", byLevel[l], l)
		}
		fmt.Fprintln(w, paint(alertStyle,
			fmt.Sprintf("  Flagged: %d window(s) (%s)", len(flagged), strings.Join(parts, ", "))))
		fmt.Fprintln(w, "  Scale: 1=highest concern, 5=informational.")
	}

	var trusted []*scan.Record
	for _, r := range records {
		if r.Trusted {
			trusted = append(trusted, r)
		}
	}
	if len(trusted) > 0 {
		fmt.Fprintf(w, "\n  Trusted (flagging suppressed): %d window(s)\n", len(trusted))
		for _, r := range trusted {
			proc := r.Process
			if proc == "" {
				proc = "<unknown>"
			}
			badge := r.TrustSource
			if r.TrustVerified != "" {
				badge += ", " + r.TrustVerified
			}
			line := fmt.Sprintf("    %-24s would be [!%d] %s: %s  [%s]",
				truncate(proc, 24), r.WouldConcernLevel,
				levelLabel(r.WouldConcernLevel), r.WouldConcernReason, badge)
			fmt.Fprintln(w, paint(dimStyle, line))
		}
		fmt.Fprintln(w, "  Use --no-default-trust to flag these windows too.")
	}
	fmt.Fprintln(w)
}

type cell struct {
	start int
	text  string
}

// renderWrapped lays cells at their column positions; a cell whose content
// overruns the next column start pushes the remaining cells to a fresh line
// at their proper positions.
func renderWrapped(cells []cell) string {
	var lines []string
	line := ""
	for _, c := range cells {
		if len(line) > c.start && strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " "))
			line = strings.Repeat(" ", c.start) + c.text
			continue
		}
		if n := c.start - len(line); n > 0 {
			line += strings.Repeat(" ", n)
		}
		line += c.text
	}
	if strings.TrimSpace(line) != "" {
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.Join(lines, "\n")
}

func pad(s string, width int, right bool) string {
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat(" ", width-len(s))
	if right {
		return fill + s
	}
	return s + fill
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
