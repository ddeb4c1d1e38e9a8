package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Entry is one completed workout session.
type Entry struct {
	ID            string    `json:"id"`
	ProgramID     string    `json:"programId"`
	DayID         string    `json:"dayId"`
	DayTitle      string    `json:"dayTitle"`
	StartedAt     time.Time `json:"startedAt"`
	CompletedAt   time.Time `json:"completedAt"`
	SetsCompleted int       `json:"setsCompleted"`
	TotalSets     int       `json:"totalSets"`
}

// Duration is the wall time from start to completion.
func (e Entry) Duration() time.Duration {
	return e.CompletedAt.Sub(e.StartedAt)
}

// Journal stores completed sessions in SQLite.
type Journal struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the journal database at path and applies pending
// migrations.
func Open(path string, log *slog.Logger) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("journal opened", "path", path)
	return &Journal{db: db, log: log}, nil
}

// runMigrations applies the embedded schema. The migrator is not closed
// because that would close db as well.
func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Record stores a completed session. Recording the same id twice replaces
// the earlier row.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO workout_sessions
			(id, program_id, day_id, day_title, started_at, completed_at, sets_completed, total_sets)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProgramID, e.DayID, e.DayTitle,
		e.StartedAt.UnixMilli(), e.CompletedAt.UnixMilli(), e.SetsCompleted, e.TotalSets,
	)
	if err != nil {
		return fmt.Errorf("recording session %s: %w", e.ID, err)
	}
	return nil
}

// List returns completed sessions newest first. An empty programID lists all
// programs; limit <= 0 means no limit.
func (j *Journal) List(ctx context.Context, programID string, limit int) ([]Entry, error) {
	query := `SELECT id, program_id, day_id, day_title, started_at, completed_at, sets_completed, total_sets
		FROM workout_sessions`
	var args []any
	if programID != "" {
		query += ` WHERE program_id = ?`
		args = append(args, programID)
	}
	query += ` ORDER BY completed_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var started, completed int64
		if err := rows.Scan(&e.ID, &e.ProgramID, &e.DayID, &e.DayTitle,
			&started, &completed, &e.SetsCompleted, &e.TotalSets); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		e.StartedAt = time.UnixMilli(started).UTC()
		e.CompletedAt = time.UnixMilli(completed).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
