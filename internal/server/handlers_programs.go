package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/gymflow/internal/models"
	"github.com/claude/gymflow/internal/programs"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	all := s.programs.Programs()
	source := models.Source(r.URL.Query().Get("source"))
	if source == "" {
		writeJSON(w, http.StatusOK, all)
		return
	}

	out := []models.Program{}
	for _, p := range all {
		if p.Source == source {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var in programs.AddUserProgramInput
	if !decodeJSON(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusCreated, s.programs.AddUserProgram(in))
}

// program loads the {id} program or writes a 404.
func (s *Server) program(w http.ResponseWriter, r *http.Request) (models.Program, bool) {
	id := chi.URLParam(r, "id")
	p, ok := s.programs.Program(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
	}
	return p, ok
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := s.program(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := s.program(w, r)
	if !ok {
		return
	}
	if p.Source != models.SourceUser {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "coach programs cannot be deleted"})
		return
	}
	s.programs.DeleteProgram(p.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateDays replaces the whole day list. Statuses of days that
// already exist are kept, since only completion moves them.
func (s *Server) handleUpdateDays(w http.ResponseWriter, r *http.Request) {
	var days []models.ProgramDay
	if !decodeJSON(w, r, &days) {
		return
	}
	p, err := s.programs.EditDays(chi.URLParam(r, "id"), func(p models.Program) ([]models.ProgramDay, error) {
		stored := make(map[string]models.DayStatus, len(p.Days))
		for _, d := range p.Days {
			stored[d.ID] = d.Status
		}
		for i := range days {
			if status, ok := stored[days[i].ID]; ok {
				days[i].Status = status
			}
		}
		return programs.NormalizeDays(days), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type weekView struct {
	Week int                 `json:"week"`
	Days []models.ProgramDay `json:"days"`
}

func (s *Server) handleListWeeks(w http.ResponseWriter, r *http.Request) {
	p, ok := s.program(w, r)
	if !ok {
		return
	}
	weeks := []weekView{}
	for _, week := range programs.WeekIndexes(p.Days) {
		weeks = append(weeks, weekView{Week: week, Days: programs.DaysInWeek(p.Days, week)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weeks":    weeks,
		"nextWeek": programs.NextWeekIndex(p.Days),
	})
}

// handleAddWeek starts a new week with one empty day.
func (s *Server) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	s.addDay(w, r, programs.NextWeekIndex)
}

func (s *Server) handleAddDay(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week must be a positive integer"})
		return
	}
	s.addDay(w, r, func([]models.ProgramDay) int { return week })
}

func (s *Server) addDay(w http.ResponseWriter, r *http.Request, week func([]models.ProgramDay) int) {
	var day models.ProgramDay
	_, err := s.programs.EditDays(chi.URLParam(r, "id"), func(p models.Program) ([]models.ProgramDay, error) {
		day = programs.NewDay(p, p.Days, week(p.Days))
		return append(p.Days, day), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	p, ok := s.program(w, r)
	if !ok {
		return
	}
	dayID := chi.URLParam(r, "dayId")
	if _, ok := p.Day(dayID); !ok {
		writeError(w, fmt.Errorf("%w: %s", programs.ErrDayNotFound, dayID))
		return
	}

	var day models.ProgramDay
	if !decodeJSON(w, r, &day) {
		return
	}
	day.ID = dayID
	for _, ex := range day.Exercises {
		if len(ex.Sets) == 0 {
			writeError(w, programs.ErrLastSet)
			return
		}
	}
	if err := s.programs.SaveDay(p.ID, day); err != nil {
		writeError(w, err)
		return
	}
	s.writeProgram(w, p.ID)
}

func (s *Server) handleRemoveDay(w http.ResponseWriter, r *http.Request) {
	dayID := chi.URLParam(r, "dayId")
	p, err := s.programs.EditDays(chi.URLParam(r, "id"), func(p models.Program) ([]models.ProgramDay, error) {
		if _, ok := p.Day(dayID); !ok {
			return nil, fmt.Errorf("%w: %s", programs.ErrDayNotFound, dayID)
		}
		return programs.RemoveDay(p.Days, dayID), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	p, ok := s.program(w, r)
	if !ok {
		return
	}
	dayID := chi.URLParam(r, "dayId")
	if _, ok := p.Day(dayID); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "day not found"})
		return
	}
	s.programs.CompleteWorkoutDay(p.ID, dayID)
	s.writeProgram(w, p.ID)
}

func (s *Server) writeProgram(w http.ResponseWriter, id string) {
	p, ok := s.programs.Program(id)
	if !ok {
		// Deleted between the handler's lookup and now.
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
