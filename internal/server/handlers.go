package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/gymflow/internal/journal"
	"github.com/claude/gymflow/internal/programs"
	"github.com/claude/gymflow/internal/session"
)

const defaultHistoryLimit = 50

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"exercises": s.library,
		"presets":   s.presets,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []journal.Entry{})
		return
	}

	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := s.history.List(r.Context(), r.URL.Query().Get("program"), limit)
	if err != nil {
		s.log.Error("history query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrProgramNotFound),
		errors.Is(err, session.ErrDayNotFound),
		errors.Is(err, session.ErrUnknownSet),
		errors.Is(err, programs.ErrProgramNotFound),
		errors.Is(err, programs.ErrDayNotFound),
		errors.Is(err, programs.ErrExerciseNotFound),
		errors.Is(err, programs.ErrSetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSetsIncomplete),
		errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrNoRest):
		status = http.StatusConflict
	case errors.Is(err, programs.ErrLastSet):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
