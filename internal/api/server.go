// Package api provides the HTTP server for HealthQuest.
// It exposes the engine facade as a small JSON API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthquest/healthquest/internal/app/engine"
	"github.com/healthquest/healthquest/internal/domain"
	"github.com/healthquest/healthquest/internal/health"
)

// Version is reported by /api/version. Set by the CLI at startup.
var Version = "dev"

// Server is the HealthQuest HTTP API server.
type Server struct {
	engine         *engine.Engine
	health         *health.Checker
	metricsEnabled bool
	corsOrigins    []string
	accessLog      io.Writer
}

// NewServer creates a new API server over eng. checker may be nil.
func NewServer(eng *engine.Engine, checker *health.Checker) *Server {
	return &Server{engine: eng, health: checker, corsOrigins: []string{"*"}}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins replaces the allowed origins.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetAccessLog writes one Apache-style line per request to w.
func (s *Server) SetAccessLog(w io.Writer) { s.accessLog = w }

// Handler returns the router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		})
		r.Get("/app", s.handleAppData)
		r.Post("/profile", s.handleSaveProfile)
		r.Post("/health-update", s.handleHealthUpdate)
		r.Post("/diet", s.handleItems(s.engine.SaveDiet))
		r.Post("/exercise", s.handleItems(s.engine.SaveExercise))
		r.Post("/day/complete", s.handleCompleteDay)
		r.Get("/days", s.handleDayHistory)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/points", s.handlePoints)

		r.Get("/rewards", s.handleRewards)
		r.Post("/rewards/{cost}/redeem", s.handleRedeem)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Post("/{id}/complete", s.handleCompleteTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	corsOrigins := handlers.AllowedOrigins(s.corsOrigins)
	corsMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"})
	corsHeaders := handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	var h http.Handler = handlers.CORS(corsOrigins, corsMethods, corsHeaders)(r)

	if s.accessLog != nil {
		h = handlers.LoggingHandler(s.accessLog, h)
	}
	return h
}

// ─── Responses ──────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response whose status follows the error kind.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	if kind == domain.KindInternal {
		msg = "internal error"
	}
	writeJSON(w, statusFor(kind), map[string]any{
		"error": map[string]string{
			"kind":    kind,
			"message": msg,
		},
	})
}

func statusFor(kind string) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindState:
		return http.StatusConflict
	case domain.KindInsufficientPoints:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. A malformed body is a validation error.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Errorf(domain.ErrValidation, "invalid request body: %v", err)
	}
	return nil
}
