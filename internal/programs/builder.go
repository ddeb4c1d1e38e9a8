package programs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/claude/gymflow/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrLastSet is returned when removing a set would leave an exercise empty.
	ErrLastSet          = errors.New("an exercise needs at least one set")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSetNotFound      = errors.New("set not found")
)

// Direction for MoveExercise.
type Direction int

const (
	Up Direction = iota
	Down
)

// Builder defaults for a freshly added set.
const (
	DefaultSetReps = "8–12 reps"
	DefaultSetRPE  = "RPE 7–8"
	DefaultSetRest = "Rest 90s"
	defaultRestSec = 90
)

// WeekIndexes returns the distinct week indexes in ascending order.
func WeekIndexes(days []models.ProgramDay) []int {
	seen := make(map[int]bool)
	var weeks []int
	for _, d := range days {
		if !seen[d.WeekIndex] {
			seen[d.WeekIndex] = true
			weeks = append(weeks, d.WeekIndex)
		}
	}
	sort.Ints(weeks)
	return weeks
}

// NextWeekIndex is the index an "add week" action creates.
func NextWeekIndex(days []models.ProgramDay) int {
	next := 1
	for _, d := range days {
		if d.WeekIndex >= next {
			next = d.WeekIndex + 1
		}
	}
	return next
}

// DaysInWeek returns the days of one week ordered by DayIndex.
func DaysInWeek(days []models.ProgramDay, week int) []models.ProgramDay {
	var out []models.ProgramDay
	for _, d := range days {
		if d.WeekIndex == week {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayIndex < out[j].DayIndex })
	return out
}

// NewDay builds an empty upcoming day appended to the given week.
func NewDay(p models.Program, days []models.ProgramDay, week int) models.ProgramDay {
	if week < 1 {
		week = 1
	}
	next := 1
	for _, d := range days {
		if d.WeekIndex == week && d.DayIndex >= next {
			next = d.DayIndex + 1
		}
	}
	return models.ProgramDay{
		ID:        fmt.Sprintf("%s-w%d-d%d-%s", p.ID, week, next, uuid.NewString()[:8]),
		Title:     fmt.Sprintf("Day %d — Custom session", next),
		Subtitle:  p.Goal,
		Focus:     p.Goal,
		WeekIndex: week,
		DayIndex:  next,
		Status:    models.DayUpcoming,
		Exercises: []models.ProgramExercise{},
	}
}

// RemoveDay drops a day by id and renumbers the remaining days.
func RemoveDay(days []models.ProgramDay, dayID string) []models.ProgramDay {
	out := make([]models.ProgramDay, 0, len(days))
	for _, d := range days {
		if d.ID != dayID {
			out = append(out, d.Clone())
		}
	}
	return NormalizeDays(out)
}

// NormalizeDays orders days by week, sorts each week by DayIndex and
// renumbers DayIndex from 1.
func NormalizeDays(days []models.ProgramDay) []models.ProgramDay {
	var order []int
	byWeek := make(map[int][]models.ProgramDay)
	for _, d := range days {
		if _, ok := byWeek[d.WeekIndex]; !ok {
			order = append(order, d.WeekIndex)
		}
		byWeek[d.WeekIndex] = append(byWeek[d.WeekIndex], d.Clone())
	}
	sort.Ints(order)

	out := make([]models.ProgramDay, 0, len(days))
	for _, w := range order {
		week := byWeek[w]
		sort.SliceStable(week, func(i, j int) bool { return week[i].DayIndex < week[j].DayIndex })
		for i := range week {
			week[i].DayIndex = i + 1
		}
		out = append(out, week...)
	}
	return out
}

func defaultSet(n int) models.ProgramSetSchema {
	rest := defaultRestSec
	return models.ProgramSetSchema{
		ID:          fmt.Sprintf("s%d", n),
		Label:       fmt.Sprintf("Set %d", n),
		TargetReps:  DefaultSetReps,
		RPE:         DefaultSetRPE,
		Rest:        DefaultSetRest,
		RestSeconds: &rest,
	}
}

// AddExercise appends an exercise with one default set. A nil preset adds a
// blank custom entry.
func AddExercise(day models.ProgramDay, preset *models.ExercisePreset) models.ProgramDay {
	ex := models.ProgramExercise{
		ID:          "ex-" + uuid.NewString(),
		Name:        "New exercise",
		MuscleGroup: "Custom",
		Equipment:   "Any",
		Sets:        []models.ProgramSetSchema{defaultSet(1)},
	}
	if preset != nil {
		ex.Name = preset.Name
		ex.MuscleGroup = preset.MuscleGroup
		ex.Equipment = preset.Equipment
	}

	out := day.Clone()
	out.Exercises = append(out.Exercises, ex)
	return out
}

// RemoveExercise drops an exercise by id.
func RemoveExercise(day models.ProgramDay, exerciseID string) models.ProgramDay {
	out := day.Clone()
	exercises := out.Exercises[:0]
	for _, ex := range out.Exercises {
		if ex.ID != exerciseID {
			exercises = append(exercises, ex)
		}
	}
	out.Exercises = exercises
	return out
}

// MoveExercise swaps an exercise with its neighbour. Moves past either end
// are ignored.
func MoveExercise(day models.ProgramDay, exerciseID string, dir Direction) models.ProgramDay {
	out := day.Clone()
	i := exerciseIndex(out, exerciseID)
	if i < 0 {
		return out
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(out.Exercises) {
		return out
	}
	out.Exercises[i], out.Exercises[j] = out.Exercises[j], out.Exercises[i]
	return out
}

// UpdateExercise applies fn to the exercise in place on a copy of day.
func UpdateExercise(day models.ProgramDay, exerciseID string, fn func(*models.ProgramExercise)) models.ProgramDay {
	out := day.Clone()
	if i := exerciseIndex(out, exerciseID); i >= 0 {
		fn(&out.Exercises[i])
	}
	return out
}

// AddSet appends a set copying the last set's prescription.
func AddSet(day models.ProgramDay, exerciseID string) models.ProgramDay {
	return UpdateExercise(day, exerciseID, func(ex *models.ProgramExercise) {
		n := len(ex.Sets) + 1
		set := defaultSet(n)
		if len(ex.Sets) > 0 {
			set = ex.Sets[len(ex.Sets)-1].Clone()
			set.ID = fmt.Sprintf("s%d", n)
			set.Label = fmt.Sprintf("Set %d", n)
		}
		ex.Sets = append(ex.Sets, set)
	})
}

// RemoveSet drops the set at index. The last remaining set cannot be removed.
func RemoveSet(day models.ProgramDay, exerciseID string, index int) (models.ProgramDay, error) {
	out := day.Clone()
	i := exerciseIndex(out, exerciseID)
	if i < 0 {
		return out, nil
	}
	ex := &out.Exercises[i]
	if index < 0 || index >= len(ex.Sets) {
		return out, nil
	}
	if len(ex.Sets) <= 1 {
		return day, ErrLastSet
	}
	ex.Sets = append(ex.Sets[:index], ex.Sets[index+1:]...)
	return out, nil
}

// UpdateSet applies fn to one set on a copy of day.
func UpdateSet(day models.ProgramDay, exerciseID string, index int, fn func(*models.ProgramSetSchema)) models.ProgramDay {
	return UpdateExercise(day, exerciseID, func(ex *models.ProgramExercise) {
		if index >= 0 && index < len(ex.Sets) {
			fn(&ex.Sets[index])
		}
	})
}

// FinalizeRestSeconds fills every missing RestSeconds from the rest text,
// falling back to the default rest.
func FinalizeRestSeconds(day models.ProgramDay) models.ProgramDay {
	out := day.Clone()
	for i := range out.Exercises {
		for j := range out.Exercises[i].Sets {
			set := &out.Exercises[i].Sets[j]
			if set.RestSeconds != nil && *set.RestSeconds > 0 {
				continue
			}
			rest := set.RestDuration()
			set.RestSeconds = &rest
		}
	}
	return out
}

func exerciseIndex(day models.ProgramDay, exerciseID string) int {
	for i, ex := range day.Exercises {
		if ex.ID == exerciseID {
			return i
		}
	}
	return -1
}
