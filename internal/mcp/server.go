// Package mcp exposes the analyzer as Model Context Protocol tools over
// stdio, so AI agents can analyze scans and explain findings.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with registered tools. Nil catalogs
// fall back to the built-in tables.
func NewServer(version string, cpus, gpus *catalog.Catalog) *Server {
	s := server.NewMCPServer("pcdiag", version, server.WithLogging())

	registerTools(s, newHandlers(cpus, gpus))

	return &Server{
		mcpServer: s,
	}
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools adds all supported tools to the server.
func registerTools(s *server.MCPServer, h *handlers) {
	analyzeTool := mcp.NewTool("analyze_scan",
		mcp.WithDescription("Analyze a PC hardware scan document (JSON produced by the pcdiag agent or 'pcdiag collect'). Returns bottlenecks, tiered recommendations and a 0-100 performance score."),
		mcp.WithString("scan",
			mcp.Required(),
			mcp.Description("The scan document as a JSON string."),
		),
		mcp.WithString("format",
			mcp.Description("Output format: json (full report) or text (human-readable summary)."),
			mcp.DefaultString("json"),
			mcp.Enum("json", "text"),
		),
	)
	s.AddTool(analyzeTool, h.analyzeScan)

	collectTool := mcp.NewTool("collect_scan",
		mcp.WithDescription("Scan the machine this server runs on (CPU, GPU, RAM, storage, OS settings) and analyze it. Takes a few seconds. Some fields need root or vendor tools such as nvidia-smi."),
		mcp.WithString("format",
			mcp.Description("Output format: json (full report) or text (human-readable summary)."),
			mcp.DefaultString("json"),
			mcp.Enum("json", "text"),
		),
	)
	s.AddTool(collectTool, h.collectScan)

	demoTool := mcp.NewTool("demo_report",
		mcp.WithDescription("Analyze the built-in demo scan of a mid-range gaming PC with common misconfigurations. Useful to see the report shape."),
		mcp.WithString("format",
			mcp.Description("Output format: json (full report) or text (human-readable summary)."),
			mcp.DefaultString("json"),
			mcp.Enum("json", "text"),
		),
	)
	s.AddTool(demoTool, h.demoReport)

	lookupTool := mcp.NewTool("lookup_hardware",
		mcp.WithDescription("Look up a CPU or GPU in the hardware catalog by (partial) model name. Returns its tier, gaming score and price, plus the best-value upgrade candidates."),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Hardware kind."),
			mcp.Enum("cpu", "gpu"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Model name, e.g. 'Ryzen 5 5600X' or 'RTX 4070'."),
		),
	)
	s.AddTool(lookupTool, h.lookupHardware)

	listTool := mcp.NewTool("list_bottlenecks",
		mcp.WithDescription("List every bottleneck id the analyzer can report with its category, severities and trigger. Use with explain_bottleneck."),
	)
	s.AddTool(listTool, h.listBottlenecks)

	explainTool := mcp.NewTool("explain_bottleneck",
		mcp.WithDescription("Get a detailed explanation, common causes and fixes for a bottleneck id from a report. Use list_bottlenecks to discover ids."),
		mcp.WithString("bottleneck_id",
			mcp.Required(),
			mcp.Description("Bottleneck id (e.g. 'ram-single-channel', 'settings-xmp-disabled')."),
		),
	)
	s.AddTool(explainTool, h.explainBottleneck)
}
