package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/sessions"
)

type startRequest struct {
	Timeframe string `json:"timeframe"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid project id")
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := s.sessions.Start(r.Context(), SessionIDFromContext(r.Context()), projectID, models.Timeframe(req.Timeframe))
	if err != nil {
		s.respondSessionError(w, err, "failed to start session")
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSessionStep(w http.ResponseWriter, r *http.Request) {
	view, err := s.sessions.CurrentStep(r.Context(), SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, err, "failed to load session")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.CompleteStep(r.Context(), SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, err, "failed to complete step")
		return
	}

	var nextStep *int
	if !session.Completed {
		n := session.CurrentStep()
		nextStep = &n
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session":   session,
		"completed": session.Completed,
		"next_step": nextStep,
	})
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.Context(), SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, err, "failed to load session")
		return
	}

	sum, err := s.summaries.Build(r.Context(), session)
	if err != nil {
		slog.Error("failed to build summary", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to build summary")
		return
	}

	respondJSON(w, http.StatusOK, sum)
}

type submitRequest struct {
	GithubRepo string `json:"github_repo"`
}

func (s *Server) handleSubmitRepo(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := s.sessions.SubmitRepo(r.Context(), SessionIDFromContext(r.Context()), chi.URLParam(r, "id"), req.GithubRepo)
	if err != nil {
		s.respondSessionError(w, err, "failed to submit repository")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleTimerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sessions.TimerStatus(r.Context(), SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, err, "failed to load timer status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// respondSessionError maps engine errors to HTTP statuses
func (s *Server) respondSessionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, sessions.ErrProjectNotFound):
		respondError(w, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, sessions.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "session not found")
	case errors.Is(err, sessions.ErrNotSessionOwner):
		respondError(w, http.StatusForbidden, "forbidden", "session does not belong to caller")
	case errors.Is(err, sessions.ErrInvalidTimeframe):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, sessions.ErrNoStepsForTimeframe):
		respondError(w, http.StatusConflict, "no_steps", err.Error())
	case errors.Is(err, sessions.ErrSessionCompleted):
		respondError(w, http.StatusConflict, "session_completed", "session already completed")
	case errors.Is(err, sessions.ErrInvalidRepoURL):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		slog.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
