package server

import (
	"net/http"

	"github.com/claude/gymflow/internal/session"
	"github.com/go-chi/chi/v5"
)

type startSessionRequest struct {
	ProgramID string `json:"programId"`
	DayID     string `json:"dayId"`
}

type sessionResponse struct {
	ID string `json:"id"`
	session.Snapshot
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProgramID == "" || req.DayID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "programId and dayId are required"})
		return
	}

	id, e, err := s.sessions.Start(req.ProgramID, req.DayID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.CounterSessionsStarted.Inc()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Snapshot: e.Snapshot()})
}

// engine loads the {id} session or writes a 404.
func (s *Server) engine(w http.ResponseWriter, r *http.Request) (string, *session.Engine, bool) {
	id := chi.URLParam(r, "id")
	e, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, session.ErrSessionNotFound)
	}
	return id, e, ok
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, e, ok := s.engine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: e.Snapshot()})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.End(chi.URLParam(r, "id")) {
		writeError(w, session.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	id, e, ok := s.engine(w, r)
	if !ok {
		return
	}
	if err := e.ToggleSet(chi.URLParam(r, "key")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: e.Snapshot()})
}

// sessionAction adapts an argument-free engine transition to a handler.
func (s *Server) sessionAction(action func(*session.Engine) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, e, ok := s.engine(w, r)
		if !ok {
			return
		}
		if err := action(e); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: e.Snapshot()})
	}
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Complete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.CounterSessionsCompleted.Inc()
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: snap})
}
