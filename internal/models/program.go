package models

import "fmt"

// Level is the experience level a program targets.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Source tells who authored a program. Only user programs can be deleted.
type Source string

const (
	SourceCoach Source = "coach"
	SourceUser  Source = "user"
)

// DayStatus moves upcoming → today → completed.
type DayStatus string

const (
	DayCompleted DayStatus = "completed"
	DayToday     DayStatus = "today"
	DayUpcoming  DayStatus = "upcoming"
)

// Progress counts finished workouts against the program total.
type Progress struct {
	CompletedWorkouts int `json:"completedWorkouts" yaml:"completed_workouts"`
	TotalWorkouts     int `json:"totalWorkouts" yaml:"total_workouts"`
}

// Program is a multi-week training plan, either coach-authored or built by the user.
type Program struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	CoachName     string       `json:"coachName,omitempty" yaml:"coach_name,omitempty"`
	Goal          string       `json:"goal" yaml:"goal"`
	Level         Level        `json:"level" yaml:"level"`
	DurationWeeks int          `json:"durationWeeks" yaml:"duration_weeks"`
	DaysPerWeek   int          `json:"daysPerWeek" yaml:"days_per_week"`
	Source        Source       `json:"source" yaml:"source"`
	Tags          []string     `json:"tags" yaml:"tags"`
	Summary       string       `json:"summary" yaml:"summary"`
	GymRequired   bool         `json:"gymRequired" yaml:"gym_required"`
	CreatedAt     int64        `json:"createdAt" yaml:"created_at"` // ms since epoch
	Progress      Progress     `json:"progress" yaml:"progress"`
	Days          []ProgramDay `json:"days" yaml:"days"`
}

// ProgramDay is one scheduled session inside a program week.
type ProgramDay struct {
	ID        string            `json:"id" yaml:"id"`
	Title     string            `json:"title" yaml:"title"`
	Subtitle  string            `json:"subtitle" yaml:"subtitle"`
	Focus     string            `json:"focus" yaml:"focus"`
	WeekIndex int               `json:"weekIndex" yaml:"week_index"` // 1-based
	DayIndex  int               `json:"dayIndex" yaml:"day_index"`   // 1-based within the week
	Status    DayStatus         `json:"status" yaml:"status"`
	Exercises []ProgramExercise `json:"exercises" yaml:"exercises"`
}

// ProgramExercise is an exercise prescription with its ordered sets.
type ProgramExercise struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	MuscleGroup string             `json:"muscleGroup" yaml:"muscle_group"`
	Equipment   string             `json:"equipment" yaml:"equipment"`
	Notes       string             `json:"notes,omitempty" yaml:"notes,omitempty"`
	VideoURL    string             `json:"videoUrl,omitempty" yaml:"video_url,omitempty"`
	Sets        []ProgramSetSchema `json:"sets" yaml:"sets"`
}

// ProgramSetSchema prescribes a single set. TargetReps, RPE and Rest are free text
// ("8–10 reps", "RPE 8", "Rest 90s"); RestSeconds is the parsed or explicit rest.
type ProgramSetSchema struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	TargetReps  string `json:"targetReps" yaml:"target_reps"`
	RPE         string `json:"rpe,omitempty" yaml:"rpe,omitempty"`
	Rest        string `json:"rest,omitempty" yaml:"rest,omitempty"`
	RestSeconds *int   `json:"restSeconds,omitempty" yaml:"rest_seconds,omitempty"`
}

// ExercisePreset is a library entry the day builder can add to a day.
type ExercisePreset struct {
	Name        string `json:"name" yaml:"name"`
	MuscleGroup string `json:"muscleGroup" yaml:"muscle_group"`
	Equipment   string `json:"equipment" yaml:"equipment"`
}

// SetKey identifies a set inside a day. Set ids ("s1", "s2") repeat across
// exercises, so the exercise id and position are part of the key.
func SetKey(exerciseID, setID string, position int) string {
	return fmt.Sprintf("%s-%s-%d", exerciseID, setID, position)
}

// Day returns the day with the given id.
func (p *Program) Day(dayID string) (ProgramDay, bool) {
	for _, d := range p.Days {
		if d.ID == dayID {
			return d, true
		}
	}
	return ProgramDay{}, false
}

// Clone returns a deep copy of the program.
func (p Program) Clone() Program {
	out := p
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.Days != nil {
		out.Days = make([]ProgramDay, len(p.Days))
		for i, d := range p.Days {
			out.Days[i] = d.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the day.
func (d ProgramDay) Clone() ProgramDay {
	out := d
	if d.Exercises != nil {
		out.Exercises = make([]ProgramExercise, len(d.Exercises))
		for i, ex := range d.Exercises {
			out.Exercises[i] = ex.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the exercise.
func (e ProgramExercise) Clone() ProgramExercise {
	out := e
	if e.Sets != nil {
		out.Sets = make([]ProgramSetSchema, len(e.Sets))
		for i, s := range e.Sets {
			out.Sets[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a copy of the set that does not share RestSeconds.
func (s ProgramSetSchema) Clone() ProgramSetSchema {
	out := s
	if s.RestSeconds != nil {
		v := *s.RestSeconds
		out.RestSeconds = &v
	}
	return out
}

// CloneDays deep copies a day list.
func CloneDays(days []ProgramDay) []ProgramDay {
	if days == nil {
		return nil
	}
	out := make([]ProgramDay, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}
