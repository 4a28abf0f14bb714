// Package mcpserver exposes the window inspection pipeline over the Model
// Context Protocol on stdio, so AI tooling can scan a desktop session
// without shelling out to the CLI.
package mcpserver

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dazzletools/wingather/internal/concern"
	"github.com/dazzletools/wingather/internal/platform"
	"github.com/dazzletools/wingather/internal/scan"
	"github.com/dazzletools/wingather/internal/signature"
)

const (
	ServerName    = "wingather"
	ServerVersion = "0.1.0"
)

// Server is the MCP server. All tools run the pipeline read-only: the MCP
// surface never moves or reveals windows.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   platform.Backend
	log       *slog.Logger
}

// NewServer wires the tools against a platform backend.
func NewServer(backend platform.Backend, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{backend: backend, log: log}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves on stdio until the context is done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scan_windows",
		Description: "Classify every top-level window, score it for concern (off-screen, shrunk, cloaked, trust verification failures), and report the remediation each window would get. Dry-run only: nothing is moved or revealed.",
	}, s.handleScan)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "Enumerate top-level windows with their visibility state and concern assessment, without planning any actions.",
	}, s.handleList)
}

// ScanInput selects pipeline options for scan_windows.
type ScanInput struct {
	All            bool   `json:"all,omitempty" jsonschema:"Plan actions for every window instead of suspicious-only"`
	ShowHidden     bool   `json:"show_hidden,omitempty" jsonschema:"Include hidden windows in the plan"`
	IncludeVirtual bool   `json:"include_virtual,omitempty" jsonschema:"Include windows on other virtual desktops"`
	Filter         string `json:"filter,omitempty" jsonschema:"Glob pattern applied to title and process name"`
	NoDefaultTrust bool   `json:"no_default_trust,omitempty" jsonschema:"Ignore the built-in trust list and flag everything"`
}

// ListInput selects enumeration options for list_windows.
type ListInput struct {
	IncludeHidden bool `json:"include_hidden,omitempty" jsonschema:"Also enumerate hidden windows"`
}

// WindowReport is one window in a tool result.
type WindowReport struct {
	Handle        uint64 `json:"handle"`
	PID           int    `json:"pid"`
	Process       string `json:"process"`
	Title         string `json:"title"`
	State         string `json:"state"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Action        string `json:"action,omitempty"`
	TargetX       *int   `json:"target_x,omitempty"`
	TargetY       *int   `json:"target_y,omitempty"`
	ConcernLevel  int    `json:"concern_level,omitempty"`
	ConcernReason string `json:"concern_reason,omitempty"`
	Trusted       bool   `json:"trusted,omitempty"`
	TrustSource   string `json:"trust_source,omitempty"`
}

// ScanOutput is the scan_windows result.
type ScanOutput struct {
	Windows    []WindowReport `json:"windows"`
	Suspicious int            `json:"suspicious"`
	Trusted    int            `json:"trusted"`
}

func (s *Server) run(ctx context.Context, opts scan.Options) (ScanOutput, error) {
	opts.Log = s.log
	opts.Weights = concern.DefaultWeights()
	opts.Verifier = &signature.Verifier{Log: s.log}

	res, err := scan.Run(ctx, s.backend, opts)
	if err != nil {
		return ScanOutput{}, err
	}

	out := ScanOutput{Windows: make([]WindowReport, 0, len(res.Records))}
	for _, r := range res.Records {
		wr := WindowReport{
			Handle:  uint64(r.Handle),
			PID:     r.PID,
			Process: r.Process,
			Title:   r.Title,
			State:   string(r.State),
			X:       r.Bounds.X,
			Y:       r.Bounds.Y,
			Width:   r.Bounds.Width,
			Height:  r.Bounds.Height,
			Action:  r.Action,
		}
		if r.HasTarget {
			x, y := r.TargetX, r.TargetY
			wr.TargetX, wr.TargetY = &x, &y
		}
		if r.Suspicious {
			wr.ConcernLevel = r.ConcernLevel
			wr.ConcernReason = r.ConcernReason
			out.Suspicious++
		}
		if r.Trusted {
			wr.Trusted = true
			wr.TrustSource = r.TrustSource
			out.Trusted++
		}
		out.Windows = append(out.Windows, wr)
	}
	return out, nil
}

func (s *Server) handleScan(ctx context.Context, _ *mcpsdk.CallToolRequest, args ScanInput) (*mcpsdk.CallToolResult, ScanOutput, error) {
	out, err := s.run(ctx, scan.Options{
		DryRun:         true,
		GatherAll:      args.All,
		ShowHidden:     args.ShowHidden,
		IncludeVirtual: args.IncludeVirtual,
		Filter:         args.Filter,
		NoDefaultTrust: args.NoDefaultTrust,
	})
	if err != nil {
		return nil, ScanOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListInput) (*mcpsdk.CallToolResult, ScanOutput, error) {
	out, err := s.run(ctx, scan.Options{
		ListOnly:   true,
		ShowHidden: args.IncludeHidden,
	})
	if err != nil {
		return nil, ScanOutput{}, err
	}
	return nil, out, nil
}
