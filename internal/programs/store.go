package programs

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/claude/gymflow/internal/models"
	"github.com/google/uuid"
)

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrDayNotFound     = errors.New("day not found")
)

// Defaults substituted by AddUserProgram when the caller leaves a field empty.
const (
	DefaultProgramName    = "My custom program"
	DefaultProgramSummary = "Custom program created by you."
	DefaultProgramGoal    = "Strength"
	DefaultDurationWeeks  = 8
	DefaultDaysPerWeek    = 4
)

// Store is the canonical in-memory program collection. Every mutation
// replaces a single program value; readers always get deep copies.
type Store struct {
	mu       sync.RWMutex
	programs []models.Program
	index    map[string]int

	now func() time.Time
	log *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store seeded with the given programs.
func NewStore(seed []models.Program, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int, len(seed)),
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range seed {
		if _, dup := s.index[p.ID]; dup {
			s.log.Warn("skipping duplicate seed program", "program_id", p.ID)
			continue
		}
		s.index[p.ID] = len(s.programs)
		s.programs = append(s.programs, p.Clone())
	}
	return s
}

// Programs returns a snapshot of every program in insertion order.
func (s *Store) Programs() []models.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Program, len(s.programs))
	for i, p := range s.programs {
		out[i] = p.Clone()
	}
	return out
}

// Program looks up a program by id.
func (s *Store) Program(id string) (models.Program, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Program{}, false
	}
	return s.programs[i].Clone(), true
}

// AddUserProgramInput carries the builder form. Zero values get defaults.
type AddUserProgramInput struct {
	Name          string       `json:"name"`
	Goal          string       `json:"goal"`
	Level         models.Level `json:"level"`
	DaysPerWeek   int          `json:"daysPerWeek"`
	Summary       string       `json:"summary"`
	DurationWeeks int          `json:"durationWeeks"`
	GymRequired   bool         `json:"gymRequired"`
}

// AddUserProgram creates an empty user-sourced program and returns it.
func (s *Store) AddUserProgram(in AddUserProgramInput) models.Program {
	if in.Name == "" {
		in.Name = DefaultProgramName
	}
	if in.Summary == "" {
		in.Summary = DefaultProgramSummary
	}
	if in.Goal == "" {
		in.Goal = DefaultProgramGoal
	}
	if !in.Level.Valid() {
		in.Level = models.LevelIntermediate
	}
	if in.DurationWeeks <= 0 {
		in.DurationWeeks = DefaultDurationWeeks
	}
	if in.DaysPerWeek <= 0 {
		in.DaysPerWeek = DefaultDaysPerWeek
	}

	p := models.Program{
		ID:            "user-" + uuid.NewString(),
		Name:          in.Name,
		Goal:          in.Goal,
		Level:         in.Level,
		DurationWeeks: in.DurationWeeks,
		DaysPerWeek:   in.DaysPerWeek,
		Source:        models.SourceUser,
		Tags:          []string{"Custom", fmt.Sprintf("%d days/week", in.DaysPerWeek), string(in.Level)},
		Summary:       in.Summary,
		GymRequired:   in.GymRequired,
		CreatedAt:     s.now().UnixMilli(),
		Days:          []models.ProgramDay{},
	}

	s.mu.Lock()
	s.index[p.ID] = len(s.programs)
	s.programs = append(s.programs, p)
	s.mu.Unlock()

	s.log.Info("user program created", "program_id", p.ID, "name", p.Name)
	return p.Clone()
}

// UpdateProgramDays replaces the day list and recomputes DaysPerWeek and
// TotalWorkouts. Unknown ids are ignored.
func (s *Store) UpdateProgramDays(programID string, days []models.ProgramDay) {
	s.EditDays(programID, func(models.Program) ([]models.ProgramDay, error) {
		return days, nil
	})
}

// SaveDay replaces a single day by id, finalising its rest seconds first.
// The stored status wins over the draft's, since only completion moves it.
func (s *Store) SaveDay(programID string, day models.ProgramDay) error {
	_, err := s.EditDay(programID, day.ID, func(stored models.ProgramDay) (models.ProgramDay, error) {
		day.Status = stored.Status
		return day, nil
	})
	return err
}

// EditDays runs fn against the current program and installs the days it
// returns, all under the store lock, so a completion landing between the read
// and the write is never lost. fn receives a deep copy. When fn fails nothing
// changes and its error is returned.
func (s *Store) EditDays(programID string, fn func(p models.Program) ([]models.ProgramDay, error)) (models.Program, error) {
	var (
		out    models.Program
		fnErr  error
		called bool
	)
	s.update(programID, func(p *models.Program) bool {
		called = true
		days, err := fn(p.Clone())
		if err != nil {
			fnErr = err
			return false
		}
		applyDays(p, models.CloneDays(days))
		out = p.Clone()
		return true
	})
	if !called {
		return models.Program{}, fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}
	if fnErr != nil {
		return models.Program{}, fnErr
	}
	return out, nil
}

// EditDay applies fn to one day through EditDays. The day keeps its id and
// its rest seconds are finalised.
func (s *Store) EditDay(programID, dayID string, fn func(day models.ProgramDay) (models.ProgramDay, error)) (models.Program, error) {
	return s.EditDays(programID, func(p models.Program) ([]models.ProgramDay, error) {
		for i, d := range p.Days {
			if d.ID != dayID {
				continue
			}
			day, err := fn(d)
			if err != nil {
				return nil, err
			}
			day.ID = dayID
			p.Days[i] = FinalizeRestSeconds(day)
			return p.Days, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrDayNotFound, dayID)
	})
}

// DeleteProgram removes a user program. Coach programs are left in place.
func (s *Store) DeleteProgram(programID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[programID]
	if !ok {
		return
	}
	if s.programs[i].Source != models.SourceUser {
		s.log.Debug("ignoring delete of coach program", "program_id", programID)
		return
	}

	programs := make([]models.Program, 0, len(s.programs)-1)
	programs = append(programs, s.programs[:i]...)
	programs = append(programs, s.programs[i+1:]...)
	s.programs = programs

	s.index = make(map[string]int, len(programs))
	for j, p := range programs {
		s.index[p.ID] = j
	}
	s.log.Info("user program deleted", "program_id", programID)
}

// CompleteWorkoutDay marks a day completed, bumps progress at most once per
// day and promotes the first upcoming day to today. Unknown ids are ignored.
func (s *Store) CompleteWorkoutDay(programID, dayID string) {
	changed := s.update(programID, func(p *models.Program) bool {
		idx := -1
		for i, d := range p.Days {
			if d.ID == dayID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}

		days := models.CloneDays(p.Days)
		if days[idx].Status != models.DayCompleted {
			days[idx].Status = models.DayCompleted
			total := p.Progress.TotalWorkouts
			if total <= 0 {
				total = len(p.Days)
			}
			if total <= 0 {
				total = 1
			}
			p.Progress.TotalWorkouts = total
			p.Progress.CompletedWorkouts = min(total, p.Progress.CompletedWorkouts+1)
		}

		for i := range days {
			if days[i].Status == models.DayUpcoming {
				days[i].Status = models.DayToday
				break
			}
		}
		p.Days = days
		return true
	})
	if changed {
		s.log.Debug("workout day completed", "program_id", programID, "day_id", dayID)
	}
}

// update applies fn to a copy of the program and swaps it in when fn reports
// a change. Other programs keep their existing values.
func (s *Store) update(programID string, fn func(*models.Program) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[programID]
	if !ok {
		return false
	}
	p := s.programs[i]
	if !fn(&p) {
		return false
	}

	programs := make([]models.Program, len(s.programs))
	copy(programs, s.programs)
	programs[i] = p
	s.programs = programs
	return true
}

// applyDays installs days on p and recomputes the derived counters.
func applyDays(p *models.Program, days []models.ProgramDay) {
	p.Days = days

	weeks := len(WeekIndexes(days))
	if weeks < 1 {
		weeks = 1
	}
	p.DaysPerWeek = max(1, int(math.Round(float64(len(days))/float64(weeks))))

	if len(days) > 0 {
		perWeek := max(1, int(math.Round(float64(p.DurationWeeks)/float64(weeks))))
		if total := len(days) * perWeek; total > 0 {
			p.Progress.TotalWorkouts = total
		}
	}
	if p.Progress.CompletedWorkouts > p.Progress.TotalWorkouts {
		p.Progress.CompletedWorkouts = p.Progress.TotalWorkouts
	}
}
