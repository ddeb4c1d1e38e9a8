package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/claude/gymflow/internal/attendance"
)

type checkInRequest struct {
	GymID string `json:"gymId"`
}

func (s *Server) handleListCheckIns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.attendance.Entries())
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.GymID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "gymId is required"})
		return
	}
	entry := s.attendance.AddCheckIn(req.GymID)
	s.metrics.CounterCheckIns.Inc()
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, attendance.Summarize(s.attendance.Entries(), s.attendance.Now()))
}

// handleCalendar renders the current month, or ?month=YYYY-MM.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.attendance.Now()
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.ParseInLocation("2006-01", m, now.Location())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		now = t
	}
	writeJSON(w, http.StatusOK, attendance.MonthCalendar(s.attendance.Entries(), now))
}
