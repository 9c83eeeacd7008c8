package recommend

import (
	"context"
	"testing"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

func seedCatalog(t *testing.T) *storage.MemoryRepository {
	t.Helper()
	repo := storage.NewMemoryRepository()
	ctx := context.Background()

	projects := []*models.Project{
		{Title: "Personal Portfolio Website", Description: "Showcase your work", Track: models.TrackFrontend, Difficulty: models.DifficultyBeginner},
		{Title: "Weather App with API", Description: "Fetch live weather data", Track: models.TrackFrontend, Difficulty: models.DifficultyAdvanced},
		{Title: "Node.js Express REST API", Description: "Server-side JavaScript", Track: models.TrackNodeJS, Difficulty: models.DifficultyIntermediate},
		{Title: "Data Analysis with Python", Description: "Explore datasets", Track: models.TrackPython, Difficulty: models.DifficultyIntermediate},
	}
	for _, p := range projects {
		if err := repo.CreateProject(ctx, p); err != nil {
			t.Fatalf("failed to seed project: %v", err)
		}
	}

	// Step technologies feed the overlap scoring
	steps := []*models.ProjectStep{
		{ProjectID: projects[0].ID, StepNumber: 1, Timeframe: models.Timeframe6h, Title: "Setup", Technologies: []string{"HTML", "CSS"}},
		{ProjectID: projects[1].ID, StepNumber: 1, Timeframe: models.Timeframe6h, Title: "Setup", Technologies: []string{"JavaScript", "Fetch API"}},
		{ProjectID: projects[2].ID, StepNumber: 1, Timeframe: models.Timeframe6h, Title: "Setup", Technologies: []string{"Node.js", "Express"}},
		{ProjectID: projects[3].ID, StepNumber: 1, Timeframe: models.Timeframe6h, Title: "Setup", Technologies: []string{"Python", "Pandas"}},
	}
	for _, s := range steps {
		if err := repo.CreateStep(ctx, s); err != nil {
			t.Fatalf("failed to seed step: %v", err)
		}
	}

	return repo
}

func TestRecommendRequiresPreferences(t *testing.T) {
	engine := New(seedCatalog(t))

	empty := &models.UserProfile{SessionID: "v1"}
	if _, err := engine.Recommend(context.Background(), empty, 6); err != ErrNoPreferences {
		t.Errorf("expected ErrNoPreferences, got %v", err)
	}

	if _, err := engine.Recommend(context.Background(), nil, 6); err != ErrNoPreferences {
		t.Errorf("nil profile: expected ErrNoPreferences, got %v", err)
	}
}

func TestRecommendRanksByTrackFirst(t *testing.T) {
	engine := New(seedCatalog(t))

	profile := &models.UserProfile{
		SessionID:       "v1",
		PreferredTracks: []models.Track{models.TrackPython},
	}

	got, err := engine.Recommend(context.Background(), profile, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(got))
	}
	if got[0].Title != "Data Analysis with Python" {
		t.Errorf("expected python project first, got %s", got[0].Title)
	}
}

func TestRecommendStableTieBreak(t *testing.T) {
	engine := New(seedCatalog(t))

	// No preference matches anything, so all scores are zero and the
	// catalog order must survive.
	profile := &models.UserProfile{
		SessionID:         "v1",
		InterestsKeywords: []string{"spaceship"},
	}

	got, err := engine.Recommend(context.Background(), profile, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Title != "Personal Portfolio Website" {
		t.Errorf("expected catalog order preserved, got %s first", got[0].Title)
	}
}

func TestRecommendLimit(t *testing.T) {
	engine := New(seedCatalog(t))

	profile := &models.UserProfile{
		SessionID:       "v1",
		PreferredTracks: []models.Track{models.TrackFrontend},
	}

	got, err := engine.Recommend(context.Background(), profile, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestScoreWeights(t *testing.T) {
	profile := &models.UserProfile{
		PreferredTracks:        []models.Track{models.TrackFrontend},
		PreferredDifficulty:    models.DifficultyAdvanced,
		InterestedTechnologies: []string{"javascript", "FETCH api"},
		InterestsKeywords:      []string{"weather"},
	}

	p := &models.Project{
		Title:      "Weather App with API",
		Track:      models.TrackFrontend,
		Difficulty: models.DifficultyAdvanced,
	}
	techs := []string{"JavaScript", "Fetch API"}

	// track 3 + difficulty 2 + two tech overlaps 2 + keyword 1
	if got := Score(p, techs, profile); got != 8 {
		t.Errorf("expected score 8, got %d", got)
	}

	// Track match counts once no matter how many preferred tracks hit
	profile.PreferredTracks = []models.Track{models.TrackFrontend, models.TrackFrontend}
	if got := Score(p, techs, profile); got != 8 {
		t.Errorf("duplicate tracks: expected score 8, got %d", got)
	}
}

func TestScoreKeywordMatchesDescription(t *testing.T) {
	profile := &models.UserProfile{InterestsKeywords: []string{"datasets"}}
	p := &models.Project{Title: "Data Analysis with Python", Description: "Explore datasets"}

	if got := Score(p, nil, profile); got != 1 {
		t.Errorf("expected score 1, got %d", got)
	}
}
