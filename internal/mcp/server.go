package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("MotionLite", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("MotionLite workout plan server. Inspect the current training plan, per-session progress, and set completion, or import a replacement plan from CSV text."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolImportPlan, Handler: h.importPlan},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentPlan, Handler: h.currentPlan},
		server.ServerResource{Resource: resProgress, Handler: h.progressResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentPlan = mcp.NewResource(
	"motionlite://plan",
	"Current Plan",
	mcp.WithResourceDescription("The imported training plan: every session with its exercises, plus which sessions are selected for the active workout"),
	mcp.WithMIMEType("application/json"),
)

var resProgress = mcp.NewResource(
	"motionlite://progress",
	"Progress Summary",
	mcp.WithResourceDescription("Set completion counts per session and overall, with session completion timestamps"),
	mcp.WithMIMEType("application/json"),
)
