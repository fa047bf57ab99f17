// Package mcp exposes the report pipeline as MCP tools over stdio, so
// an agent can query the same ledgers the CLI writes.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dratasich/log-activity/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler
// factories.
var toolRegistry = map[string]toolEntry{
	"activity_report": {
		def:     activityReportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityReport },
	},
	"working_time_report": {
		def:     workingTimeReportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWorkingTimeReport },
	},
	"classify": {
		def:     classifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClassify },
	},
}

var activityReportToolDef = mcp.NewTool("activity_report",
	mcp.WithDescription("Compute the per-day, per-project activity ledger over a date range."),
	mcp.WithString("from", mcp.Description("Start date (inclusive), yyyy-mm-dd. Defaults to the first of the current month.")),
	mcp.WithString("to", mcp.Description("End date (exclusive), yyyy-mm-dd. Defaults to tomorrow.")),
)

var workingTimeReportToolDef = mcp.NewTool("working_time_report",
	mcp.WithDescription("Compute the aligned working-time ledger with policy violation notes over a date range."),
	mcp.WithString("from", mcp.Description("Start date (inclusive), yyyy-mm-dd. Defaults to the first of the current month.")),
	mcp.WithString("to", mcp.Description("End date (exclusive), yyyy-mm-dd. Defaults to tomorrow.")),
)

var classifyToolDef = mcp.NewTool("classify",
	mcp.WithDescription("Classify a text against a configured category rule group."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Text to classify.")),
	mcp.WithString("group", mcp.Required(), mcp.Description("Rule group name, e.g. project-by-issue.")),
	mcp.WithBoolean("all", mcp.Description("Return all matching labels instead of the first match.")),
)

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates an MCP server with the report tools registered.
func NewServer(cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"log-activity",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(cfg)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(cfg, version))
}
