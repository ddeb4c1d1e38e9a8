package mcp

import (
	"context"
	"errors"

	"github.com/claude/gymflow/internal/attendance"
	"github.com/claude/gymflow/internal/journal"
	"github.com/claude/gymflow/internal/models"
	"github.com/claude/gymflow/internal/programs"
)

// ErrNotFound is returned when a program id is unknown.
var ErrNotFound = errors.New("not found")

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// stores) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListPrograms(ctx context.Context) ([]models.Program, error)
	GetProgram(ctx context.Context, id string) (models.Program, error)
	AttendanceEntries(ctx context.Context) ([]models.AttendanceEntry, error)
	AttendanceSummary(ctx context.Context) (attendance.Summary, error)
	History(ctx context.Context, programID string, limit int) ([]journal.Entry, error)
}

// HistoryLister is the read side of the workout journal.
type HistoryLister interface {
	List(ctx context.Context, programID string, limit int) ([]journal.Entry, error)
}

// Local serves MCP from the stores of the running server.
type Local struct {
	Programs   *programs.Store
	Attendance *attendance.Store
	Journal    HistoryLister // nil when the journal is disabled
}

// Compile-time checks.
var (
	_ DataSource    = (*Local)(nil)
	_ HistoryLister = (*journal.Journal)(nil)
)

func (l *Local) ListPrograms(ctx context.Context) ([]models.Program, error) {
	return l.Programs.Programs(), nil
}

func (l *Local) GetProgram(ctx context.Context, id string) (models.Program, error) {
	p, ok := l.Programs.Program(id)
	if !ok {
		return models.Program{}, ErrNotFound
	}
	return p, nil
}

func (l *Local) AttendanceEntries(ctx context.Context) ([]models.AttendanceEntry, error) {
	return l.Attendance.Entries(), nil
}

func (l *Local) AttendanceSummary(ctx context.Context) (attendance.Summary, error) {
	return attendance.Summarize(l.Attendance.Entries(), l.Attendance.Now()), nil
}

func (l *Local) History(ctx context.Context, programID string, limit int) ([]journal.Entry, error) {
	if l.Journal == nil {
		return []journal.Entry{}, nil
	}
	return l.Journal.List(ctx, programID, limit)
}
