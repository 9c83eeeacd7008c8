package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/profiles"
)

// Onboarding is four questions answered in order; each answer persists as it
// arrives and the final one stamps the profile complete.

type experienceRequest struct {
	ExperienceLevel string `json:"experience_level"`
}

func (s *Server) handleOnboardingExperience(w http.ResponseWriter, r *http.Request) {
	var req experienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	profile, err := s.profiles.SetExperience(r.Context(), SessionIDFromContext(r.Context()), models.ExperienceLevel(req.ExperienceLevel))
	if err != nil {
		s.respondProfileError(w, err, "failed to record experience level")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

type technologiesRequest struct {
	Technologies []string `json:"technologies"`
}

func (s *Server) handleOnboardingTechnologies(w http.ResponseWriter, r *http.Request) {
	var req technologiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	profile, err := s.profiles.SetTechnologies(r.Context(), SessionIDFromContext(r.Context()), req.Technologies)
	if err != nil {
		s.respondProfileError(w, err, "failed to record technologies")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

type tracksRequest struct {
	Tracks     []string `json:"tracks"`
	Difficulty string   `json:"difficulty"`
	Timeframe  string   `json:"timeframe"`
}

func (s *Server) handleOnboardingTracks(w http.ResponseWriter, r *http.Request) {
	var req tracksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	tracks := make([]models.Track, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		tracks = append(tracks, models.Track(t))
	}

	profile, err := s.profiles.SetPreferences(r.Context(), SessionIDFromContext(r.Context()),
		tracks, models.Difficulty(req.Difficulty), models.Timeframe(req.Timeframe))
	if err != nil {
		s.respondProfileError(w, err, "failed to record track preferences")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

type interestsRequest struct {
	Interests string `json:"interests"`
}

func (s *Server) handleOnboardingInterests(w http.ResponseWriter, r *http.Request) {
	var req interestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	profile, err := s.profiles.SetInterests(r.Context(), SessionIDFromContext(r.Context()), req.Interests)
	if err != nil {
		s.respondProfileError(w, err, "failed to record interests")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleOnboardingReset(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Reset(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.respondProfileError(w, err, "failed to reset onboarding")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.GetOrCreate(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.respondProfileError(w, err, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) respondProfileError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, profiles.ErrEmptyAnswer):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, profiles.ErrInvalidAnswer):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, profiles.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, "not_found", "profile not found")
	default:
		slog.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
