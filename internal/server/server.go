package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/gymflow/internal/attendance"
	"github.com/claude/gymflow/internal/catalog"
	"github.com/claude/gymflow/internal/journal"
	"github.com/claude/gymflow/internal/metrics"
	"github.com/claude/gymflow/internal/models"
	"github.com/claude/gymflow/internal/programs"
	"github.com/claude/gymflow/internal/session"
	"github.com/go-chi/chi/v5"
)

// HistoryLister is the read side of the workout journal.
type HistoryLister interface {
	List(ctx context.Context, programID string, limit int) ([]journal.Entry, error)
}

// Deps are the stores the handlers serve.
type Deps struct {
	Programs   *programs.Store
	Attendance *attendance.Store
	Sessions   *session.Manager
	History    HistoryLister // nil when the journal is disabled
	Library    []models.ExercisePreset
	Presets    catalog.Presets
	Metrics    *metrics.Manager // nil uses a private registry
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	programs   *programs.Store
	attendance *attendance.Store
	sessions   *session.Manager
	history    HistoryLister
	library    []models.ExercisePreset
	presets    catalog.Presets
	metrics    *metrics.Manager

	log    *slog.Logger
	apiKey string
	whois  WhoIser
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(deps Deps, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		programs:   deps.Programs,
		attendance: deps.Attendance,
		sessions:   deps.Sessions,
		history:    deps.History,
		library:    deps.Library,
		presets:    deps.Presets,
		metrics:    deps.Metrics,
		log:        log,
		apiKey:     apiKey,
		router:     chi.NewRouter(),
	}
	if s.metrics == nil {
		s.metrics = metrics.NewTestManager()
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.metrics.Middleware)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identify)

		r.Get("/me", s.handleMe)
		r.Get("/library", s.handleLibrary)
		r.Get("/history", s.handleHistory)

		r.Route("/programs", func(r chi.Router) {
			r.Get("/", s.handleListPrograms)
			r.Post("/", s.handleCreateProgram)
			r.Get("/{id}", s.handleGetProgram)
			r.Delete("/{id}", s.handleDeleteProgram)
			r.Put("/{id}/days", s.handleUpdateDays)
			r.Get("/{id}/weeks", s.handleListWeeks)
			r.Post("/{id}/weeks", s.handleAddWeek)
			r.Post("/{id}/weeks/{week}/days", s.handleAddDay)
			r.Put("/{id}/days/{dayId}", s.handleSaveDay)
			r.Delete("/{id}/days/{dayId}", s.handleRemoveDay)
			r.Post("/{id}/days/{dayId}/complete", s.handleCompleteDay)

			r.Route("/{id}/days/{dayId}/exercises", func(r chi.Router) {
				r.Post("/", s.handleAddExercise)
				r.Put("/{exerciseId}", s.handleUpdateExercise)
				r.Delete("/{exerciseId}", s.handleRemoveExercise)
				r.Post("/{exerciseId}/move/{dir}", s.handleMoveExercise)
				r.Post("/{exerciseId}/sets", s.handleAddSet)
				r.Put("/{exerciseId}/sets/{index}", s.handleUpdateSet)
				r.Delete("/{exerciseId}/sets/{index}", s.handleRemoveSet)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", s.handleListCheckIns)
			r.Post("/check-ins", s.handleCheckIn)
			r.Get("/summary", s.handleAttendanceSummary)
			r.Get("/calendar", s.handleCalendar)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleStartSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleEndSession)
			r.Post("/{id}/sets/{key}/toggle", s.handleToggleSet)
			r.Post("/{id}/pause", s.sessionAction((*session.Engine).PauseWorkout))
			r.Post("/{id}/resume", s.sessionAction((*session.Engine).ResumeWorkout))
			r.Post("/{id}/rest/pause", s.sessionAction((*session.Engine).PauseTimer))
			r.Post("/{id}/rest/resume", s.sessionAction((*session.Engine).ResumeTimer))
			r.Post("/{id}/rest/skip", s.sessionAction((*session.Engine).SkipRest))
			r.Post("/{id}/rest/ack", s.sessionAction((*session.Engine).AcknowledgeRest))
			r.Post("/{id}/complete", s.handleCompleteSession)
		})
	})
}

// SetMCP mounts a streamable HTTP MCP handler at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}

// SetTailscale enables per-request identity lookup via the tailnet.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}
