package programs

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/gymflow/internal/models"
)

func builderDays() []models.ProgramDay {
	return []models.ProgramDay{
		{ID: "w1d2", WeekIndex: 1, DayIndex: 2},
		{ID: "w1d1", WeekIndex: 1, DayIndex: 1},
		{ID: "w2d1", WeekIndex: 2, DayIndex: 1},
	}
}

// TestWeekHelpers covers week listing, the add-week index and per-week order.
func TestWeekHelpers(t *testing.T) {
	days := builderDays()

	weeks := WeekIndexes(days)
	if len(weeks) != 2 || weeks[0] != 1 || weeks[1] != 2 {
		t.Errorf("WeekIndexes = %v, want [1 2]", weeks)
	}
	if got := NextWeekIndex(days); got != 3 {
		t.Errorf("NextWeekIndex = %d, want 3", got)
	}
	if got := NextWeekIndex(nil); got != 1 {
		t.Errorf("NextWeekIndex(nil) = %d, want 1", got)
	}
	w1 := DaysInWeek(days, 1)
	if len(w1) != 2 || w1[0].ID != "w1d1" || w1[1].ID != "w1d2" {
		t.Errorf("DaysInWeek(1) = %+v", w1)
	}
}

// TestNewDay verifies the next day index, title and program-derived focus.
func TestNewDay(t *testing.T) {
	p := models.Program{ID: "p", Goal: "Strength"}
	d := NewDay(p, builderDays(), 1)

	if d.DayIndex != 3 || d.WeekIndex != 1 {
		t.Errorf("index = w%d d%d, want w1 d3", d.WeekIndex, d.DayIndex)
	}
	if d.Title != "Day 3 — Custom session" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Subtitle != "Strength" || d.Focus != "Strength" || d.Status != models.DayUpcoming {
		t.Errorf("unexpected day: %+v", d)
	}
	if !strings.HasPrefix(d.ID, "p-w1-d3-") {
		t.Errorf("id = %q", d.ID)
	}
}

// TestRemoveDayRenumbers verifies remaining days are renumbered per week.
func TestRemoveDayRenumbers(t *testing.T) {
	days := RemoveDay(builderDays(), "w1d1")
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	if days[0].ID != "w1d2" || days[0].DayIndex != 1 {
		t.Errorf("first day = %s/%d, want w1d2/1", days[0].ID, days[0].DayIndex)
	}
	if days[1].ID != "w2d1" || days[1].DayIndex != 1 {
		t.Errorf("second day = %s/%d", days[1].ID, days[1].DayIndex)
	}
}

// TestNormalizeDaysOrdersWeeks verifies days come out week by week in
// ascending order regardless of input order.
func TestNormalizeDaysOrdersWeeks(t *testing.T) {
	in := []models.ProgramDay{
		{ID: "b", WeekIndex: 2, DayIndex: 5},
		{ID: "a", WeekIndex: 1, DayIndex: 3},
		{ID: "c", WeekIndex: 2, DayIndex: 1},
	}
	got := NormalizeDays(in)

	want := []struct {
		id        string
		week, day int
	}{{"a", 1, 1}, {"c", 2, 1}, {"b", 2, 2}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].WeekIndex != w.week || got[i].DayIndex != w.day {
			t.Errorf("day %d = %s w%d d%d, want %s w%d d%d", i, got[i].ID, got[i].WeekIndex, got[i].DayIndex, w.id, w.week, w.day)
		}
	}
}

// TestAddExercise covers blank and preset exercises; both start with one set.
func TestAddExercise(t *testing.T) {
	day := AddExercise(models.ProgramDay{ID: "d"}, nil)
	day = AddExercise(day, &models.ExercisePreset{Name: "Lat Pulldown", MuscleGroup: "Back", Equipment: "Cable"})

	if len(day.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(day.Exercises))
	}
	blank := day.Exercises[0]
	if blank.Name != "New exercise" || blank.MuscleGroup != "Custom" || blank.Equipment != "Any" {
		t.Errorf("blank = %+v", blank)
	}
	if len(blank.Sets) != 1 || blank.Sets[0].Label != "Set 1" || *blank.Sets[0].RestSeconds != 90 {
		t.Errorf("default set = %+v", blank.Sets)
	}
	if day.Exercises[1].Name != "Lat Pulldown" || day.Exercises[1].Equipment != "Cable" {
		t.Errorf("preset = %+v", day.Exercises[1])
	}
	if blank.ID == day.Exercises[1].ID {
		t.Error("exercise ids collide")
	}
}

// TestMoveExercise verifies adjacent swaps and ignored out-of-range moves.
func TestMoveExercise(t *testing.T) {
	day := models.ProgramDay{Exercises: []models.ProgramExercise{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	tests := []struct {
		name string
		id   string
		dir  Direction
		want string
	}{
		{name: "down", id: "a", dir: Down, want: "bac"},
		{name: "up", id: "c", dir: Up, want: "acb"},
		{name: "top up", id: "a", dir: Up, want: "abc"},
		{name: "bottom down", id: "c", dir: Down, want: "abc"},
		{name: "unknown", id: "z", dir: Down, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveExercise(day, tt.id, tt.dir)
			var order string
			for _, ex := range got.Exercises {
				order += ex.ID
			}
			if order != tt.want {
				t.Errorf("order = %q, want %q", order, tt.want)
			}
		})
	}
	if day.Exercises[0].ID != "a" {
		t.Error("input day was mutated")
	}
}

// TestRemoveAndUpdateExercise verifies exercise edits return new days.
func TestRemoveAndUpdateExercise(t *testing.T) {
	day := models.ProgramDay{Exercises: []models.ProgramExercise{{ID: "a"}, {ID: "b"}}}

	got := RemoveExercise(day, "a")
	if len(got.Exercises) != 1 || got.Exercises[0].ID != "b" {
		t.Errorf("after remove = %+v", got.Exercises)
	}
	got = UpdateExercise(day, "b", func(ex *models.ProgramExercise) { ex.Notes = "slow" })
	if got.Exercises[1].Notes != "slow" || day.Exercises[1].Notes != "" {
		t.Errorf("update leaked or missed: %+v / %+v", got.Exercises[1], day.Exercises[1])
	}
}

// TestAddSetCopiesLast verifies a new set inherits the last prescription.
func TestAddSetCopiesLast(t *testing.T) {
	rest := 120
	day := models.ProgramDay{Exercises: []models.ProgramExercise{{
		ID:   "a",
		Sets: []models.ProgramSetSchema{{ID: "s1", Label: "Set 1", TargetReps: "5 reps", Rest: "Rest 2min", RestSeconds: &rest}},
	}}}

	got := AddSet(day, "a")
	sets := got.Exercises[0].Sets
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(sets))
	}
	if sets[1].ID != "s2" || sets[1].Label != "Set 2" || sets[1].TargetReps != "5 reps" || *sets[1].RestSeconds != 120 {
		t.Errorf("new set = %+v", sets[1])
	}
	*sets[1].RestSeconds = 10
	if *sets[0].RestSeconds != 120 {
		t.Error("new set shares RestSeconds with the previous one")
	}
}

// TestRemoveSetKeepsOne verifies the at-least-one-set rule.
func TestRemoveSetKeepsOne(t *testing.T) {
	day := AddExercise(models.ProgramDay{}, nil)
	exID := day.Exercises[0].ID

	if _, err := RemoveSet(day, exID, 0); !errors.Is(err, ErrLastSet) {
		t.Fatalf("err = %v, want ErrLastSet", err)
	}

	day = AddSet(day, exID)
	got, err := RemoveSet(day, exID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Exercises[0].Sets) != 1 || got.Exercises[0].Sets[0].ID != "s2" {
		t.Errorf("remaining sets = %+v", got.Exercises[0].Sets)
	}
}

// TestUpdateSet verifies a single set edit.
func TestUpdateSet(t *testing.T) {
	day := AddExercise(models.ProgramDay{}, nil)
	exID := day.Exercises[0].ID

	got := UpdateSet(day, exID, 0, func(s *models.ProgramSetSchema) { s.TargetReps = "AMRAP" })
	if got.Exercises[0].Sets[0].TargetReps != "AMRAP" {
		t.Errorf("targetReps = %q", got.Exercises[0].Sets[0].TargetReps)
	}
	same := UpdateSet(day, exID, 5, func(s *models.ProgramSetSchema) { s.TargetReps = "x" })
	if same.Exercises[0].Sets[0].TargetReps != DefaultSetReps {
		t.Error("out-of-range index modified a set")
	}
}

// TestFinalizeRestSeconds keeps explicit values and parses the rest.
func TestFinalizeRestSeconds(t *testing.T) {
	explicit := 45
	day := models.ProgramDay{Exercises: []models.ProgramExercise{{
		Sets: []models.ProgramSetSchema{
			{Rest: "Rest 90s", RestSeconds: &explicit},
			{Rest: "Rest 3m"},
			{Rest: "as needed"},
		},
	}}}

	got := FinalizeRestSeconds(day)
	want := []int{45, 180, 60}
	for i, w := range want {
		if rs := got.Exercises[0].Sets[i].RestSeconds; rs == nil || *rs != w {
			t.Errorf("set %d restSeconds = %v, want %d", i, rs, w)
		}
	}
	if day.Exercises[0].Sets[1].RestSeconds != nil {
		t.Error("input day was mutated")
	}
}
