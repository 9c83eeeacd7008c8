package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solosprint/sprint-engine/internal/config"
	"github.com/solosprint/sprint-engine/internal/generator"
	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/profiles"
	"github.com/solosprint/sprint-engine/internal/recommend"
	"github.com/solosprint/sprint-engine/internal/sessions"
	"github.com/solosprint/sprint-engine/internal/storage"
	"github.com/solosprint/sprint-engine/internal/summary"
)

// RecommendationCache holds a visitor's ranked recommendation list. The
// server treats it as optional; a nil cache means every request recomputes.
type RecommendationCache interface {
	Get(ctx context.Context, sessionID string) ([]*models.Project, error)
	Set(ctx context.Context, sessionID string, projects []*models.Project) error
}

// Server represents the HTTP API server
type Server struct {
	config       config.ServerConfig
	router       *chi.Mux
	repo         storage.Repository
	profiles     *profiles.Service
	recommender  *recommend.Engine
	generator    *generator.Generator
	sessions     *sessions.Engine
	summaries    *summary.Builder
	recCache     RecommendationCache
	recLimit     int
	resourcesDir string
}

// Deps bundles the collaborators the server routes to
type Deps struct {
	Repo         storage.Repository
	Profiles     *profiles.Service
	Recommender  *recommend.Engine
	Generator    *generator.Generator
	Sessions     *sessions.Engine
	Summaries    *summary.Builder
	Cache        RecommendationCache
	RecLimit     int
	ResourcesDir string
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		config:       cfg,
		repo:         deps.Repo,
		profiles:     deps.Profiles,
		recommender:  deps.Recommender,
		generator:    deps.Generator,
		sessions:     deps.Sessions,
		summaries:    deps.Summaries,
		recCache:     deps.Cache,
		recLimit:     deps.RecLimit,
		resourcesDir: deps.ResourcesDir,
	}
	if s.recLimit <= 0 {
		s.recLimit = 6
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
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", sessionHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1 routes (scoped to a visitor session)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RequireSession)

		// Onboarding and profile
		r.Route("/onboarding", func(r chi.Router) {
			r.Post("/experience", s.handleOnboardingExperience)
			r.Post("/technologies", s.handleOnboardingTechnologies)
			r.Post("/tracks", s.handleOnboardingTracks)
			r.Post("/interests", s.handleOnboardingInterests)
			r.Post("/reset", s.handleOnboardingReset)
		})
		r.Get("/profile", s.handleGetProfile)

		// Recommendations
		r.Get("/recommendations", s.handleRecommendations)

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/generate", s.handleGenerateProject)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Post("/start", s.handleStartSession)
			})
		})

		// Sessions (project attempts)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSessionStep)
			r.Post("/complete-step", s.handleCompleteStep)
			r.Get("/summary", s.handleGetSummary)
			r.Post("/submit", s.handleSubmitRepo)
			r.Get("/timer", s.handleTimerStatus)
			r.Get("/timer/ws", s.handleTimerSocket)
		})

		// Resources
		r.Get("/resources/{id}/download", s.handleDownloadResource)
	})

	s.router = r
}
