package session

import "time"

// Snapshot is a read-only view of an engine.
type Snapshot struct {
	ProgramID     string        `json:"programId"`
	DayID         string        `json:"dayId"`
	DayTitle      string        `json:"dayTitle"`
	Status        WorkoutStatus `json:"status"`
	CompletedSets int           `json:"completedSets"`
	TotalSets     int           `json:"totalSets"`
	Progress      float64       `json:"progress"`
	AllCompleted  bool          `json:"allCompleted"`
	Rest          RestView      `json:"rest"`
	Sets          []SetView     `json:"sets"`
	StartedAt     time.Time     `json:"startedAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

// RestView is the rest card.
type RestView struct {
	State     RestState `json:"state"`
	Resting   bool      `json:"resting"`
	Remaining int       `json:"remainingSeconds"`
	Total     int       `json:"totalSeconds"`
	Progress  float64   `json:"progress"`
	ActiveKey string    `json:"activeKey,omitempty"`
	NextKey   string    `json:"nextKey,omitempty"`
	UpNext    *UpNext   `json:"upNext,omitempty"`
	Expired   bool      `json:"expired,omitempty"`
}

// SetView is one row of the session screen. Ready flags the up-next set once
// the countdown is no longer running.
type SetView struct {
	Key          string `json:"key"`
	ExerciseID   string `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	SetID        string `json:"setId"`
	Label        string `json:"label"`
	TargetReps   string `json:"targetReps"`
	RPE          string `json:"rpe,omitempty"`
	RestSeconds  int    `json:"restSeconds"`
	Completed    bool   `json:"completed"`
	Ready        bool   `json:"ready"`
}

// Snapshot returns the current derived state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		ProgramID:     e.programID,
		DayID:         e.day.ID,
		DayTitle:      e.day.Title,
		Status:        e.status,
		CompletedSets: len(e.completed),
		TotalSets:     len(e.sets),
		AllCompleted:  e.allCompleted(),
		StartedAt:     e.startedAt,
		Rest: RestView{
			State:     e.rest,
			Resting:   e.rest == RestResting || e.rest == RestPaused,
			Remaining: e.remaining,
			Total:     e.total,
			ActiveKey: e.activeKey,
			NextKey:   e.nextKey,
			Expired:   e.expired,
		},
		Sets: make([]SetView, len(e.sets)),
	}
	if s.TotalSets > 0 {
		s.Progress = float64(s.CompletedSets) / float64(s.TotalSets)
	}
	if e.total > 0 {
		s.Rest.Progress = float64(e.total-e.remaining) / float64(e.total)
	}
	if e.upNext != nil {
		u := *e.upNext
		s.Rest.UpNext = &u
	}
	if !e.completedAt.IsZero() {
		t := e.completedAt
		s.CompletedAt = &t
	}

	counting := e.rest == RestResting || e.rest == RestPaused
	for i, fs := range e.sets {
		done := e.completed[fs.key]
		s.Sets[i] = SetView{
			Key:          fs.key,
			ExerciseID:   fs.exerciseID,
			ExerciseName: fs.exerciseName,
			SetID:        fs.set.ID,
			Label:        fs.set.Label,
			TargetReps:   fs.set.TargetReps,
			RPE:          fs.set.RPE,
			RestSeconds:  fs.restSeconds,
			Completed:    done,
			Ready:        !done && fs.key == e.nextKey && e.nextKey != "" && !counting,
		}
	}
	return s
}
