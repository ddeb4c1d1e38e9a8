package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/claude/gymflow/internal/journal"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Journal records finished sessions.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Info summarises a live session.
type Info struct {
	ID        string        `json:"id"`
	ProgramID string        `json:"programId"`
	DayID     string        `json:"dayId"`
	Status    WorkoutStatus `json:"status"`
}

// LiveGauge tracks how many sessions are live. prometheus.Gauge satisfies it.
type LiveGauge interface {
	Inc()
	Sub(float64)
}

type nopGauge struct{}

func (nopGauge) Inc()        {}
func (nopGauge) Sub(float64) {}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLiveGauge reports the live session count to g.
func WithLiveGauge(g LiveGauge) ManagerOption {
	return func(m *Manager) { m.live = g }
}

// Manager owns the live sessions of the process. Sessions live in memory
// only and are dropped on restart.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Engine

	store   ProgramStore
	journal Journal
	deps    Deps
	live    LiveGauge
	log     *slog.Logger
}

// NewManager creates a session registry. journal may be nil.
func NewManager(store ProgramStore, j Journal, deps Deps, log *slog.Logger, opts ...ManagerOption) *Manager {
	if deps.Log == nil {
		deps.Log = log
	}
	m := &Manager{
		sessions: make(map[string]*Engine),
		store:    store,
		journal:  j,
		deps:     deps,
		live:     nopGauge{},
		log:      log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens a session for a program day.
func (m *Manager) Start(programID, dayID string) (string, *Engine, error) {
	e, err := Start(m.store, programID, dayID, m.deps)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()
	m.live.Inc()

	m.log.Info("session started", "session_id", id, "program_id", programID, "day_id", dayID)
	return id, e, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	return e, ok
}

// List returns the live sessions ordered by id.
func (m *Manager) List() []Info {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	engines := make(map[string]*Engine, len(m.sessions))
	for id, e := range m.sessions {
		ids = append(ids, id)
		engines[id] = e
	}
	m.mu.Unlock()

	sort.Strings(ids)
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		snap := engines[id].Snapshot()
		out = append(out, Info{ID: id, ProgramID: snap.ProgramID, DayID: snap.DayID, Status: snap.Status})
	}
	return out
}

// Complete finishes a session, records it in the journal and releases it.
// Journal failures are logged; the workout still counts as completed.
func (m *Manager) Complete(ctx context.Context, id string) (Snapshot, error) {
	e, ok := m.Get(id)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if err := e.Complete(ctx); err != nil {
		return e.Snapshot(), err
	}
	snap := e.Snapshot()

	if m.journal != nil {
		entry := journal.Entry{
			ID:            id,
			ProgramID:     snap.ProgramID,
			DayID:         snap.DayID,
			DayTitle:      snap.DayTitle,
			StartedAt:     snap.StartedAt,
			SetsCompleted: snap.CompletedSets,
			TotalSets:     snap.TotalSets,
		}
		if snap.CompletedAt != nil {
			entry.CompletedAt = *snap.CompletedAt
		}
		if err := m.journal.Record(ctx, entry); err != nil {
			m.log.Error("recording session in journal", "session_id", id, "error", err)
		}
	}

	m.End(id)
	return snap, nil
}

// End stops a session's timers and forgets it. Unsaved progress is lost.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.live.Sub(1)
	e.Close()
	m.log.Info("session ended", "session_id", id)
	return true
}

// Close ends every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Engine)
	m.mu.Unlock()

	m.live.Sub(float64(len(sessions)))
	for _, e := range sessions {
		e.Close()
	}
	if len(sessions) > 0 {
		m.log.Info("closed live sessions", "count", len(sessions))
	}
}
