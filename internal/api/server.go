package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Duly330AI/Matheheftt-sub000/internal/config"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
	"github.com/Duly330AI/Matheheftt-sub000/internal/services"
	"github.com/Duly330AI/Matheheftt-sub000/internal/storage"
	"github.com/Duly330AI/Matheheftt-sub000/internal/templates"
)

// Server represents the HTTP API server
type Server struct {
	config  config.ServerConfig
	router  *chi.Mux
	engines *engine.Registry
	manager practice.Manager
	catalog *templates.Loader
	backing *services.Registry
	auth    *AuthMiddleware
}

// NewServer creates a new API server. With authEnabled false every
// /api/v1 route is open. backing may be nil.
func NewServer(
	cfg config.ServerConfig,
	engines *engine.Registry,
	manager practice.Manager,
	catalog *templates.Loader,
	repo storage.Repository,
	backing *services.Registry,
	authEnabled bool,
) *Server {
	s := &Server{
		config:  cfg,
		engines: engines,
		manager: manager,
		catalog: catalog,
		backing: backing,
	}
	if authEnabled {
		s.auth = NewAuthMiddleware(repo)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	timeout := middleware.Timeout(30 * time.Second)

	r.Route("/api/v1", func(r chi.Router) {
		if s.auth != nil {
			r.Use(s.auth.Authenticate)
		}

		r.Route("/engines", func(r chi.Router) {
			r.Use(timeout, s.require(models.PermCatalogRead))
			r.Get("/", s.handleListEngines)
			r.Get("/{id}", s.handleGetEngine)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Use(timeout, s.require(models.PermCatalogRead))
			r.Get("/topics", s.handleListTopics)
			r.Get("/topics/{topicId}", s.handleGetTopic)
			r.Get("/topics/{topicId}/presets", s.handleListPresets)
			r.Get("/presets/{topicId}/{code}", s.handleGetPreset)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(timeout, s.require(models.PermSessionsRead)).Get("/", s.handleListSessions)
			r.With(timeout, s.require(models.PermSessionsWrite)).Post("/", s.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				// Long-lived, so no request timeout
				r.With(s.require(models.PermSessionsWrite)).Get("/live", s.handleLiveWS)

				r.Group(func(r chi.Router) {
					r.Use(timeout)
					r.With(s.require(models.PermSessionsRead)).Get("/", s.handleGetSession)
					r.With(s.require(models.PermSessionsRead)).Get("/attempts", s.handleListAttempts)
					r.With(s.require(models.PermSessionsWrite)).Delete("/", s.handleDeleteSession)
					r.With(s.require(models.PermSessionsWrite)).Post("/input", s.handleInput)
					r.With(s.require(models.PermSessionsWrite)).Post("/next", s.handleAction(s.manager.Next))
					r.With(s.require(models.PermSessionsWrite)).Post("/undo", s.handleAction(s.manager.Undo))
					r.With(s.require(models.PermSessionsWrite)).Post("/reset", s.handleAction(s.manager.Reset))
					r.With(s.require(models.PermSessionsWrite)).Post("/clear", s.handleAction(s.manager.Clear))
				})
			})
		})
	})

	s.router = r
}

// require checks a permission when authentication is on
func (s *Server) require(permission string) func(http.Handler) http.Handler {
	if s.auth == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.auth.RequirePermission(permission)
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
