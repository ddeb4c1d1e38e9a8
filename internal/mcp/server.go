package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("gymflow", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("gymflow training server. Browse workout programs and their days, check gym attendance streaks, and review completed workout sessions."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListPrograms, Handler: h.listPrograms},
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolGetAttendanceSummary, Handler: h.getAttendanceSummary},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
	)

	s.AddResources(
		server.ServerResource{Resource: resPrograms, Handler: h.programsResource},
		server.ServerResource{Resource: resAttendance, Handler: h.attendanceResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resPrograms = mcp.NewResource(
	"gymflow://programs",
	"Programs",
	mcp.WithResourceDescription("All coach and user programs with progress and the day scheduled for today"),
	mcp.WithMIMEType("application/json"),
)

var resAttendance = mcp.NewResource(
	"gymflow://attendance",
	"Attendance",
	mcp.WithResourceDescription("Gym check-ins with this month's count, last visit and current streak"),
	mcp.WithMIMEType("application/json"),
)
