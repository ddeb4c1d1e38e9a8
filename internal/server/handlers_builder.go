package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/gymflow/internal/models"
	"github.com/claude/gymflow/internal/programs"
	"github.com/go-chi/chi/v5"
)

type addExerciseRequest struct {
	Preset string `json:"preset"` // library name; empty adds a blank exercise
}

type updateExerciseRequest struct {
	Name        *string `json:"name"`
	MuscleGroup *string `json:"muscleGroup"`
	Equipment   *string `json:"equipment"`
	Notes       *string `json:"notes"`
}

type updateSetRequest struct {
	Label       *string `json:"label"`
	TargetReps  *string `json:"targetReps"`
	RPE         *string `json:"rpe"`
	Rest        *string `json:"rest"`
	RestSeconds *int    `json:"restSeconds"`
}

// editDay applies a builder edit to {dayId} and writes the resulting day.
func (s *Server) editDay(w http.ResponseWriter, r *http.Request, status int, fn func(models.ProgramDay) (models.ProgramDay, error)) {
	dayID := chi.URLParam(r, "dayId")
	p, err := s.programs.EditDay(chi.URLParam(r, "id"), dayID, fn)
	if err != nil {
		writeError(w, err)
		return
	}
	day, _ := p.Day(dayID)
	writeJSON(w, status, day)
}

// editExercise is editDay for edits aimed at {exerciseId}.
func (s *Server) editExercise(w http.ResponseWriter, r *http.Request, fn func(day models.ProgramDay, exerciseID string) (models.ProgramDay, error)) {
	exerciseID := chi.URLParam(r, "exerciseId")
	s.editDay(w, r, http.StatusOK, func(day models.ProgramDay) (models.ProgramDay, error) {
		if _, ok := findExercise(day, exerciseID); !ok {
			return day, fmt.Errorf("%w: %s", programs.ErrExerciseNotFound, exerciseID)
		}
		return fn(day, exerciseID)
	})
}

// editSet is editExercise for edits aimed at the {index} set (0-based).
func (s *Server) editSet(w http.ResponseWriter, r *http.Request, fn func(day models.ProgramDay, exerciseID string, index int) (models.ProgramDay, error)) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "set index must be an integer"})
		return
	}
	s.editExercise(w, r, func(day models.ProgramDay, exerciseID string) (models.ProgramDay, error) {
		ex, _ := findExercise(day, exerciseID)
		if index < 0 || index >= len(ex.Sets) {
			return day, fmt.Errorf("%w: %s #%d", programs.ErrSetNotFound, exerciseID, index)
		}
		return fn(day, exerciseID, index)
	})
}

func findExercise(day models.ProgramDay, exerciseID string) (models.ProgramExercise, bool) {
	for _, ex := range day.Exercises {
		if ex.ID == exerciseID {
			return ex, true
		}
	}
	return models.ProgramExercise{}, false
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var preset *models.ExercisePreset
	if req.Preset != "" {
		for i := range s.library {
			if s.library[i].Name == req.Preset {
				preset = &s.library[i]
				break
			}
		}
		if preset == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown preset " + strconv.Quote(req.Preset)})
			return
		}
	}

	s.editDay(w, r, http.StatusCreated, func(day models.ProgramDay) (models.ProgramDay, error) {
		return programs.AddExercise(day, preset), nil
	})
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var req updateExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.editExercise(w, r, func(day models.ProgramDay, exerciseID string) (models.ProgramDay, error) {
		return programs.UpdateExercise(day, exerciseID, func(ex *models.ProgramExercise) {
			setIf(&ex.Name, req.Name)
			setIf(&ex.MuscleGroup, req.MuscleGroup)
			setIf(&ex.Equipment, req.Equipment)
			setIf(&ex.Notes, req.Notes)
		}), nil
	})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	s.editExercise(w, r, func(day models.ProgramDay, exerciseID string) (models.ProgramDay, error) {
		return programs.RemoveExercise(day, exerciseID), nil
	})
}

func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	var dir programs.Direction
	switch chi.URLParam(r, "dir") {
	case "up":
		dir = programs.Up
	case "down":
		dir = programs.Down
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be up or down"})
		return
	}
	s.editExercise(w, r, func(day models.ProgramDay, exerciseID string) (models.ProgramDay, error) {
		return programs.MoveExercise(day, exerciseID, dir), nil
	})
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	s.editExercise(w, r, func(day models.ProgramDay, exerciseID string) (models.ProgramDay, error) {
		return programs.AddSet(day, exerciseID), nil
	})
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req updateSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.editSet(w, r, func(day models.ProgramDay, exerciseID string, index int) (models.ProgramDay, error) {
		return programs.UpdateSet(day, exerciseID, index, func(set *models.ProgramSetSchema) {
			setIf(&set.Label, req.Label)
			setIf(&set.TargetReps, req.TargetReps)
			setIf(&set.RPE, req.RPE)
			if req.Rest != nil {
				set.Rest = *req.Rest
				set.RestSeconds = nil // reparsed on save
			}
			if req.RestSeconds != nil {
				rest := *req.RestSeconds
				set.RestSeconds = &rest
			}
		}), nil
	})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	s.editSet(w, r, programs.RemoveSet)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
