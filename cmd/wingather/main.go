package main

import (
	"fmt"
	"io"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		// Bare invocation runs the default gather, suspicious-only.
		os.Exit(runGather(nil))
	}

	switch os.Args[1] {
	case "gather":
		os.Exit(runGather(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "undo":
		os.Exit(runUndo(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version", "--version":
		fmt.Printf("wingather %s\n", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		// Allow flags directly after the binary name (wingather -n -v).
		if len(os.Args[1]) > 0 && os.Args[1][0] == '-' {
			os.Exit(runGather(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wingather [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Find suspicious windows and bring them to your attention.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  gather     Restore, reveal and center flagged windows (default)")
	fmt.Fprintln(w, "  list       Enumerate windows without planning any action")
	fmt.Fprintln(w, "  undo       Re-hide windows revealed by a previous --show-hidden run")
	fmt.Fprintln(w, "  mcp        Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "  version    Print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  wingather --dry-run -v                Preview suspicious windows (verbose)")
	fmt.Fprintln(w, "  wingather --all --dry-run             Preview ALL windows")
	fmt.Fprintln(w, "  wingather -n --show-hidden            Dry run including hidden windows")
	fmt.Fprintln(w, "  wingather --include-virtual           Pull windows from other desktops")
	fmt.Fprintln(w, "  wingather --trust mytool.exe -n       Trust a process (skip flagging)")
	fmt.Fprintln(w, "  wingather --no-default-trust -n       Flag everything, ignore defaults")
	fmt.Fprintln(w, "  wingather --filter \"*chrome*\" -n      Only affect Chrome windows")
	fmt.Fprintln(w, "  wingather --json --dry-run            Output as JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Concern levels:")
	fmt.Fprintln(w, "  [!1] ALERT    Highest concern (e.g., off-screen + failed trust check)")
	fmt.Fprintln(w, "  [!2] ALERT    High concern (e.g., off-screen)")
	fmt.Fprintln(w, "  [!3] CONCERN  Moderate (e.g., shrunk window)")
	fmt.Fprintln(w, "  [!4] NOTE     Low concern (e.g., dialog, partially off-screen)")
	fmt.Fprintln(w, "  [!5] NOTE     Informational (e.g., cloaked on another desktop)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wingather gather --help' for the full option list.")
}
