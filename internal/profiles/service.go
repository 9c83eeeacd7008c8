package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

// Common errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmptyAnswer     = errors.New("answer must not be empty")
	ErrInvalidAnswer   = errors.New("invalid answer")
)

// Invalidator drops cached recommendation lists for a visitor. Every profile
// mutation goes through it so stale recommendations never outlive a changed
// preference.
type Invalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}

// Service manages visitor profiles and the four-question onboarding flow.
// Answers persist as they arrive; the final question stamps the profile
// complete.
type Service struct {
	repo  storage.Repository
	cache Invalidator
}

func New(repo storage.Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetOrCreate returns the visitor's profile, creating a blank one on first
// contact. A profile flagged complete with no preferences is repaired to
// incomplete before it is returned.
func (s *Service) GetOrCreate(ctx context.Context, sessionID string) (*models.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		profile = &models.UserProfile{SessionID: sessionID, InterestedTechnologies: []string{}, PreferredTracks: []models.Track{}, InterestsKeywords: []string{}}
		if err := s.repo.CreateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		return profile, nil
	}

	if profile.OnboardingCompleted && !profile.HasPreferences() {
		profile.OnboardingCompleted = false
		if err := s.repo.UpdateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to repair profile: %w", err)
		}
		slog.Warn("repaired profile flagged complete without preferences", "session", sessionID)
	}

	return profile, nil
}

// Get returns the visitor's profile or ErrProfileNotFound
func (s *Service) Get(ctx context.Context, sessionID string) (*models.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// SetExperience records the answer to question one
func (s *Service) SetExperience(ctx context.Context, sessionID string, level models.ExperienceLevel) (*models.UserProfile, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: experience level %q", ErrInvalidAnswer, level)
	}
	return s.mutate(ctx, sessionID, func(p *models.UserProfile) error {
		p.ExperienceLevel = level
		return nil
	})
}

// SetTechnologies records the answer to question two
func (s *Service) SetTechnologies(ctx context.Context, sessionID string, technologies []string) (*models.UserProfile, error) {
	cleaned := cleanList(technologies)
	if len(cleaned) == 0 {
		return nil, ErrEmptyAnswer
	}
	return s.mutate(ctx, sessionID, func(p *models.UserProfile) error {
		p.InterestedTechnologies = cleaned
		return nil
	})
}

// SetPreferences records the answer to question three. Tracks are required;
// difficulty and timeframe are optional and only overwrite when provided.
func (s *Service) SetPreferences(ctx context.Context, sessionID string, tracks []models.Track, difficulty models.Difficulty, timeframe models.Timeframe) (*models.UserProfile, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyAnswer
	}
	for _, t := range tracks {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: track %q", ErrInvalidAnswer, t)
		}
	}
	if difficulty != "" && !difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty %q", ErrInvalidAnswer, difficulty)
	}
	if timeframe != "" && !timeframe.Valid() {
		return nil, fmt.Errorf("%w: timeframe %q", ErrInvalidAnswer, timeframe)
	}
	return s.mutate(ctx, sessionID, func(p *models.UserProfile) error {
		p.PreferredTracks = tracks
		if difficulty != "" {
			p.PreferredDifficulty = difficulty
		}
		if timeframe != "" {
			p.PreferredTimeframe = timeframe
		}
		return nil
	})
}

// SetInterests records the final answer and stamps the profile complete.
// Accepts a comma-separated string; blank fragments are dropped.
func (s *Service) SetInterests(ctx context.Context, sessionID string, interests string) (*models.UserProfile, error) {
	keywords := cleanList(strings.Split(interests, ","))
	if len(keywords) == 0 {
		return nil, ErrEmptyAnswer
	}
	return s.mutate(ctx, sessionID, func(p *models.UserProfile) error {
		p.InterestsKeywords = keywords
		p.OnboardingCompleted = true
		return nil
	})
}

// Reset clears every answer and the completion flag so the visitor can run
// onboarding again.
func (s *Service) Reset(ctx context.Context, sessionID string) (*models.UserProfile, error) {
	return s.mutate(ctx, sessionID, func(p *models.UserProfile) error {
		p.ExperienceLevel = ""
		p.InterestedTechnologies = []string{}
		p.PreferredTracks = []models.Track{}
		p.PreferredDifficulty = ""
		p.PreferredTimeframe = ""
		p.InterestsKeywords = []string{}
		p.OnboardingCompleted = false
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*models.UserProfile) error) (*models.UserProfile, error) {
	profile, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(profile); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			slog.Warn("failed to invalidate recommendation cache", "session", sessionID, "error", err)
		}
	}
	return profile, nil
}

func cleanList(items []string) []string {
	out := []string{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
