package mcp

import (
	"context"
	"errors"

	"github.com/claude/gymflow/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultHistoryLimit = 20

// programSummary is the list view of a program; days are left out.
type programSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CoachName     string          `json:"coachName,omitempty"`
	Goal          string          `json:"goal"`
	Level         models.Level    `json:"level"`
	Source        models.Source   `json:"source"`
	DurationWeeks int             `json:"durationWeeks"`
	DaysPerWeek   int             `json:"daysPerWeek"`
	Progress      models.Progress `json:"progress"`
	Today         string          `json:"today,omitempty"`
}

func summarize(p models.Program) programSummary {
	s := programSummary{
		ID:            p.ID,
		Name:          p.Name,
		CoachName:     p.CoachName,
		Goal:          p.Goal,
		Level:         p.Level,
		Source:        p.Source,
		DurationWeeks: p.DurationWeeks,
		DaysPerWeek:   p.DaysPerWeek,
		Progress:      p.Progress,
	}
	for _, d := range p.Days {
		if d.Status == models.DayToday {
			s.Today = d.Title
			break
		}
	}
	return s
}

// --- Tool definitions ---

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List workout programs with goal, level, progress and the day scheduled for today."),
	mcp.WithString("source", mcp.Description("Only programs from this source."), mcp.Enum("coach", "user")),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Get one program with every day, exercise and set prescription."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program ID (e.g. lean-bulk-12w)")),
)

var toolGetAttendanceSummary = mcp.NewTool("get_attendance_summary",
	mcp.WithDescription("Gym attendance: check-ins this month, last visit date and the current daily streak."),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Completed workout sessions, newest first, with set counts and timing."),
	mcp.WithString("program_id", mcp.Description("Only sessions of this program.")),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) listPrograms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	source := models.Source(req.GetString("source", ""))
	out := []programSummary{}
	for _, p := range programs {
		if source != "" && p.Source != source {
			continue
		}
		out = append(out, summarize(p))
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("program_id")
	if err != nil {
		return mcp.NewToolResultError("program_id parameter is required"), nil
	}

	p, err := h.ds.GetProgram(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return mcp.NewToolResultError("program not found: " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(p)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAttendanceSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.ds.AttendanceSummary(ctx)
	if err != nil {
		h.log.Error("mcp get_attendance_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := h.ds.History(ctx, req.GetString("program_id", ""), limit)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
