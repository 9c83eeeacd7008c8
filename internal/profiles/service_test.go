package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

const visitorID = "visitor-1"

// spyInvalidator records invalidation calls
type spyInvalidator struct {
	calls []string
	err   error
}

func (s *spyInvalidator) Invalidate(_ context.Context, sessionID string) error {
	s.calls = append(s.calls, sessionID)
	return s.err
}

func TestGetOrCreate(t *testing.T) {
	repo := storage.NewMemoryRepository()
	service := New(repo, nil)
	ctx := context.Background()

	profile, err := service.GetOrCreate(ctx, visitorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.SessionID != visitorID {
		t.Errorf("unexpected session id: %q", profile.SessionID)
	}
	if profile.OnboardingCompleted {
		t.Error("fresh profile should not be complete")
	}

	// Second call returns the same profile, not a new one
	again, err := service.GetOrCreate(ctx, visitorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != profile.ID {
		t.Errorf("expected existing profile %d, got %d", profile.ID, again.ID)
	}
}

func TestGetMissing(t *testing.T) {
	repo := storage.NewMemoryRepository()
	service := New(repo, nil)

	if _, err := service.Get(context.Background(), "nobody"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestOnboardingFlow(t *testing.T) {
	repo := storage.NewMemoryRepository()
	spy := &spyInvalidator{}
	service := New(repo, spy)
	ctx := context.Background()

	profile, err := service.SetExperience(ctx, visitorID, models.ExperienceIntermediate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.OnboardingCompleted {
		t.Error("question one must not complete onboarding")
	}

	if _, err := service.SetTechnologies(ctx, visitorID, []string{" Python ", "", "Django"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err = service.SetPreferences(ctx, visitorID, []models.Track{models.TrackPython}, models.DifficultyIntermediate, models.Timeframe12h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.OnboardingCompleted {
		t.Error("question three must not complete onboarding")
	}

	profile, err = service.SetInterests(ctx, visitorID, "automation, , data analysis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profile.OnboardingCompleted {
		t.Error("final question must complete onboarding")
	}
	if len(profile.InterestsKeywords) != 2 {
		t.Errorf("expected 2 keywords, got %v", profile.InterestsKeywords)
	}
	if profile.InterestedTechnologies[0] != "Python" {
		t.Errorf("expected trimmed technology, got %q", profile.InterestedTechnologies[0])
	}

	// Every answer invalidated the cache
	if len(spy.calls) != 4 {
		t.Errorf("expected 4 invalidations, got %d", len(spy.calls))
	}
	for _, sid := range spy.calls {
		if sid != visitorID {
			t.Errorf("invalidated wrong visitor: %q", sid)
		}
	}
}

func TestAnswerValidation(t *testing.T) {
	repo := storage.NewMemoryRepository()
	service := New(repo, nil)
	ctx := context.Background()

	if _, err := service.SetExperience(ctx, visitorID, "wizard"); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := service.SetTechnologies(ctx, visitorID, []string{"  ", ""}); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("expected ErrEmptyAnswer, got %v", err)
	}
	if _, err := service.SetPreferences(ctx, visitorID, nil, "", ""); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("expected ErrEmptyAnswer, got %v", err)
	}
	if _, err := service.SetPreferences(ctx, visitorID, []models.Track{"gamedev"}, "", ""); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := service.SetPreferences(ctx, visitorID, []models.Track{models.TrackPython}, "impossible", ""); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := service.SetInterests(ctx, visitorID, " , ,"); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("expected ErrEmptyAnswer, got %v", err)
	}
}

func TestPreferencesPartialOverwrite(t *testing.T) {
	repo := storage.NewMemoryRepository()
	service := New(repo, nil)
	ctx := context.Background()

	_, err := service.SetPreferences(ctx, visitorID, []models.Track{models.TrackBackend}, models.DifficultyAdvanced, models.Timeframe24h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Omitting difficulty and timeframe keeps the earlier answers
	profile, err := service.SetPreferences(ctx, visitorID, []models.Track{models.TrackFrontend}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.PreferredDifficulty != models.DifficultyAdvanced {
		t.Errorf("difficulty overwritten: %q", profile.PreferredDifficulty)
	}
	if profile.PreferredTimeframe != models.Timeframe24h {
		t.Errorf("timeframe overwritten: %q", profile.PreferredTimeframe)
	}
	if profile.PreferredTracks[0] != models.TrackFrontend {
		t.Errorf("tracks not replaced: %v", profile.PreferredTracks)
	}
}

func TestReset(t *testing.T) {
	repo := storage.NewMemoryRepository()
	spy := &spyInvalidator{}
	service := New(repo, spy)
	ctx := context.Background()

	if _, err := service.SetExperience(ctx, visitorID, models.ExperienceBeginner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.SetInterests(ctx, visitorID, "games"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := service.Reset(ctx, visitorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.OnboardingCompleted {
		t.Error("reset must clear the completion flag")
	}
	if profile.ExperienceLevel != "" || len(profile.InterestsKeywords) != 0 {
		t.Errorf("reset left answers behind: %+v", profile)
	}
	if len(spy.calls) == 0 {
		t.Error("reset must invalidate cached recommendations")
	}
}

func TestRepairsCompleteWithoutPreferences(t *testing.T) {
	repo := storage.NewMemoryRepository()
	service := New(repo, nil)
	ctx := context.Background()

	broken := &models.UserProfile{
		SessionID:           visitorID,
		OnboardingCompleted: true,
	}
	if err := repo.CreateProfile(ctx, broken); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	profile, err := service.GetOrCreate(ctx, visitorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.OnboardingCompleted {
		t.Error("expected the completion flag repaired to false")
	}

	// The repair persisted
	stored, err := repo.GetProfile(ctx, visitorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.OnboardingCompleted {
		t.Error("repair was not persisted")
	}
}

func TestInvalidationFailureIsNonFatal(t *testing.T) {
	repo := storage.NewMemoryRepository()
	spy := &spyInvalidator{err: errors.New("redis down")}
	service := New(repo, spy)

	profile, err := service.SetExperience(context.Background(), visitorID, models.ExperienceAdvanced)
	if err != nil {
		t.Fatalf("expected mutation to survive cache failure, got %v", err)
	}
	if profile.ExperienceLevel != models.ExperienceAdvanced {
		t.Errorf("answer not stored: %q", profile.ExperienceLevel)
	}
}
