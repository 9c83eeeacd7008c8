package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solosprint/sprint-engine/internal/generator"
	"github.com/solosprint/sprint-engine/internal/metrics"
	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/recommend"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Recommendation handlers

// maxRecommendationLimit caps the limit query parameter and is the size of
// the ranked list cached per visitor.
const maxRecommendationLimit = 50

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	profile, err := s.profiles.GetOrCreate(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load profile", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	// Incomplete profiles never reach the engine
	if !profile.OnboardingCompleted {
		respondError(w, http.StatusConflict, "onboarding_incomplete", "complete onboarding before requesting recommendations")
		return
	}

	limit := s.recLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxRecommendationLimit {
			limit = n
		}
	}

	if s.recCache != nil {
		cached, err := s.recCache.Get(r.Context(), sessionID)
		if err != nil {
			slog.Warn("recommendation cache read failed", "error", err)
		} else if cached != nil {
			metrics.RecommendationCacheHits.Inc()
			respondJSON(w, http.StatusOK, truncateProjects(cached, limit))
			return
		}
	}

	// Rank the full list once so a cached entry can serve any limit
	projects, err := s.recommender.Recommend(r.Context(), profile, maxRecommendationLimit)
	if err != nil {
		if errors.Is(err, recommend.ErrNoPreferences) {
			respondError(w, http.StatusConflict, "onboarding_incomplete", "complete onboarding before requesting recommendations")
			return
		}
		slog.Error("failed to build recommendations", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to build recommendations")
		return
	}

	if s.recCache != nil {
		if err := s.recCache.Set(r.Context(), sessionID, projects); err != nil {
			slog.Warn("recommendation cache write failed", "error", err)
		}
	}

	metrics.RecommendationsServed.Inc()
	respondJSON(w, http.StatusOK, truncateProjects(projects, limit))
}

func truncateProjects(projects []*models.Project, limit int) []*models.Project {
	if len(projects) > limit {
		return projects[:limit]
	}
	return projects
}

// Project handlers

type trackGroup struct {
	Track    models.Track                            `json:"track"`
	Projects map[models.Difficulty][]*models.Project `json:"projects"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	curated := false
	filters := models.ProjectFilters{Generated: &curated}
	if track := r.URL.Query().Get("track"); track != "" {
		filters.Track = models.Track(track)
		if !filters.Track.Valid() {
			respondError(w, http.StatusBadRequest, "validation_error", "invalid track")
			return
		}
	}
	if diff := r.URL.Query().Get("difficulty"); diff != "" {
		filters.Difficulty = models.Difficulty(diff)
		if !filters.Difficulty.Valid() {
			respondError(w, http.StatusBadRequest, "validation_error", "invalid difficulty")
			return
		}
	}

	projects, err := s.repo.ListProjects(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list projects")
		return
	}

	// Group by track, then difficulty, preserving enum order
	groups := []trackGroup{}
	for _, track := range models.Tracks {
		group := trackGroup{Track: track, Projects: map[models.Difficulty][]*models.Project{}}
		for _, p := range projects {
			if p.Track == track {
				group.Projects[p.Difficulty] = append(group.Projects[p.Difficulty], p)
			}
		}
		if len(group.Projects) > 0 {
			groups = append(groups, group)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":  len(projects),
		"tracks": groups,
	})
}

// projectOverview is the detail view used to pick a timeframe
type projectOverview struct {
	Project             *models.Project           `json:"project"`
	AvailableTimeframes []models.Timeframe        `json:"available_timeframes"`
	Resources           []*models.ProjectResource `json:"resources"`
	HasSteps            bool                      `json:"has_steps"`
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid project id")
		return
	}

	project, err := s.repo.GetProject(r.Context(), id)
	if err != nil {
		slog.Error("failed to load project", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load project")
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, "not_found", "project not found")
		return
	}

	timeframes, err := s.repo.AvailableTimeframes(r.Context(), id)
	if err != nil {
		slog.Error("failed to load timeframes", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load timeframes")
		return
	}

	resources, err := s.repo.GetResources(r.Context(), id)
	if err != nil {
		slog.Error("failed to load resources", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load resources")
		return
	}

	respondJSON(w, http.StatusOK, projectOverview{
		Project:             project,
		AvailableTimeframes: timeframes,
		Resources:           resources,
		HasSteps:            len(timeframes) > 0,
	})
}

type generateRequest struct {
	Track      string   `json:"track"`
	Difficulty string   `json:"difficulty"`
	Timeframe  string   `json:"timeframe"`
	Keywords   []string `json:"keywords"`
	Interests  []string `json:"interests"`
}

func (s *Server) handleGenerateProject(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	project, err := s.generator.Generate(r.Context(), generator.Request{
		Track:      models.Track(req.Track),
		Difficulty: models.Difficulty(req.Difficulty),
		Timeframe:  models.Timeframe(req.Timeframe),
		Keywords:   req.Keywords,
		Interests:  req.Interests,
	})
	if err != nil {
		if errors.Is(err, generator.ErrUnknownTrack) ||
			errors.Is(err, generator.ErrUnknownDifficulty) ||
			errors.Is(err, generator.ErrUnknownTimeframe) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		slog.Error("failed to generate project", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to generate project")
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

// Resource handlers

func (s *Server) handleDownloadResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid resource id")
		return
	}

	resource, err := s.repo.GetResource(r.Context(), id)
	if err != nil {
		slog.Error("failed to load resource", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load resource")
		return
	}
	if resource == nil {
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	// Resolve under the configured directory only; reject path escapes
	path := filepath.Join(s.resourcesDir, filepath.Clean("/"+resource.FilePath))
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("resource file missing", "id", id, "path", path, "error", err)
		respondError(w, http.StatusNotFound, "not_found", "resource file not found")
		return
	}
	defer file.Close()

	filename := filepath.Base(resource.FilePath)
	w.Header().Set("Content-Type", resource.ResourceType.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	info, err := file.Stat()
	if err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}

	http.ServeContent(w, r, filename, time.Time{}, file)
}
