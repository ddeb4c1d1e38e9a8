package attendance

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/claude/gymflow/internal/models"
)

// Store is the append-only check-in log.
type Store struct {
	mu      sync.RWMutex
	entries []models.AttendanceEntry
	ids     map[string]struct{}

	now func() time.Time
	log *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the check-in clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithEntries seeds the log with existing check-ins.
func WithEntries(entries []models.AttendanceEntry) Option {
	return func(s *Store) {
		s.entries = append(s.entries, entries...)
	}
}

// NewStore creates an attendance store.
func NewStore(log *slog.Logger, opts ...Option) *Store {
	s := &Store{now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		s.ids[e.ID] = struct{}{}
	}
	return s
}

// AddCheckIn records a check-in at the current time. Ids are the millisecond
// timestamp, suffixed with a counter when that id is already taken.
func (s *Store) AddCheckIn(gymID string) models.AttendanceEntry {
	s.mu.Lock()
	ms := s.now().UnixMilli()
	base := strconv.FormatInt(ms, 10)
	id := base
	for n := 1; ; n++ {
		if _, taken := s.ids[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	s.ids[id] = struct{}{}
	e := models.AttendanceEntry{ID: id, Timestamp: ms, GymID: gymID}
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	s.log.Info("check-in recorded", "id", id, "gym_id", gymID)
	return e
}

// Entries returns a copy of the log in insertion order.
func (s *Store) Entries() []models.AttendanceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AttendanceEntry(nil), s.entries...)
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}
