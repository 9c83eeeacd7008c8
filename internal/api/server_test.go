package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/solosprint/sprint-engine/internal/config"
	"github.com/solosprint/sprint-engine/internal/generator"
	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/profiles"
	"github.com/solosprint/sprint-engine/internal/recommend"
	"github.com/solosprint/sprint-engine/internal/sessions"
	"github.com/solosprint/sprint-engine/internal/storage"
	"github.com/solosprint/sprint-engine/internal/summary"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryRepository) {
	return newTestServerWithCache(t, nil)
}

func newTestServerWithCache(t *testing.T, recCache RecommendationCache) (*httptest.Server, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	srv := NewServer(config.ServerConfig{}, Deps{
		Repo:        repo,
		Profiles:    profiles.New(repo, nil),
		Recommender: recommend.New(repo),
		Generator:   generator.New(repo),
		Sessions:    sessions.New(repo),
		Summaries:   summary.New(repo),
		Cache:       recCache,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, repo
}

// mapCache is an in-memory RecommendationCache for handler tests
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]*models.Project
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]*models.Project)}
}

func (c *mapCache) Get(_ context.Context, sessionID string) ([]*models.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[sessionID], nil
}

func (c *mapCache) Set(_ context.Context, sessionID string, projects []*models.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID] = projects
	return nil
}

func seedProject(t *testing.T, repo *storage.MemoryRepository) int64 {
	t.Helper()
	ctx := context.Background()
	project := &models.Project{
		Title:      "Task Tracker CLI",
		Track:      models.TrackPython,
		Difficulty: models.DifficultyBeginner,
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	for i, title := range []string{"Set Up the Project", "Model the Tasks", "Add Commands"} {
		step := &models.ProjectStep{
			ProjectID:    project.ID,
			StepNumber:   i + 1,
			Timeframe:    models.Timeframe6h,
			Title:        title,
			Technologies: []string{"Python"},
		}
		if err := repo.CreateStep(ctx, step); err != nil {
			t.Fatalf("failed to seed step: %v", err)
		}
	}
	return project.ID
}

func doRequest(t *testing.T, method, url, sessionID string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, envelope
}

func TestRequireSession(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, envelope := doRequest(t, http.MethodGet, ts.URL+"/api/v1/recommendations", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	var apiErr apiError
	if err := json.Unmarshal(envelope["error"], &apiErr); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if apiErr.Code != "missing_session" {
		t.Errorf("unexpected error code: %q", apiErr.Code)
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doRequest(t, http.MethodGet, ts.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRecommendationsRequireOnboarding(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, envelope := doRequest(t, http.MethodGet, ts.URL+"/api/v1/recommendations", "visitor-1", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
	var apiErr apiError
	if err := json.Unmarshal(envelope["error"], &apiErr); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if apiErr.Code != "onboarding_incomplete" {
		t.Errorf("unexpected error code: %q", apiErr.Code)
	}
}

func TestOnboardingThenRecommendations(t *testing.T) {
	ts, repo := newTestServer(t)
	seedProject(t, repo)
	base := ts.URL + "/api/v1"

	steps := []struct {
		path string
		body any
	}{
		{"/onboarding/experience", map[string]string{"experience_level": "beginner"}},
		{"/onboarding/technologies", map[string][]string{"technologies": {"Python"}}},
		{"/onboarding/tracks", map[string]any{"tracks": []string{"python"}, "difficulty": "beginner", "timeframe": "6h"}},
		{"/onboarding/interests", map[string]string{"interests": "automation, tools"}},
	}
	for _, step := range steps {
		resp, _ := doRequest(t, http.MethodPost, base+step.path, "visitor-1", step.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", step.path, resp.StatusCode)
		}
	}

	resp, envelope := doRequest(t, http.MethodGet, base+"/recommendations", "visitor-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var projects []json.RawMessage
	if err := json.Unmarshal(envelope["data"], &projects); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(projects) == 0 {
		t.Error("expected at least one recommendation")
	}
}

func TestRecommendationsCacheServesLargerLimit(t *testing.T) {
	recCache := newMapCache()
	ts, repo := newTestServerWithCache(t, recCache)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		project := &models.Project{
			Title:      fmt.Sprintf("Python Project %d", i+1),
			Track:      models.TrackPython,
			Difficulty: models.DifficultyBeginner,
		}
		if err := repo.CreateProject(ctx, project); err != nil {
			t.Fatalf("failed to seed project: %v", err)
		}
	}

	profile := &models.UserProfile{
		SessionID:           "visitor-1",
		PreferredTracks:     []models.Track{models.TrackPython},
		OnboardingCompleted: true,
	}
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	// The first request populates the cache with the full ranked list
	resp, envelope := doRequest(t, http.MethodGet, ts.URL+"/api/v1/recommendations?limit=2", "visitor-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var projects []json.RawMessage
	if err := json.Unmarshal(envelope["data"], &projects); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(projects))
	}
	if cached, _ := recCache.Get(ctx, "visitor-1"); len(cached) != 4 {
		t.Fatalf("expected the full ranked list cached, got %d entries", len(cached))
	}

	// A later request with a larger limit is served in full from the cache
	resp, envelope = doRequest(t, http.MethodGet, ts.URL+"/api/v1/recommendations?limit=4", "visitor-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(envelope["data"], &projects); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(projects) != 4 {
		t.Errorf("expected 4 recommendations, got %d", len(projects))
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts, repo := newTestServer(t)
	projectID := seedProject(t, repo)
	base := ts.URL + "/api/v1"

	resp, envelope := doRequest(t, http.MethodPost, fmt.Sprintf("%s/projects/%d/start", base, projectID), "visitor-1", map[string]string{"timeframe": "6h"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var started models.UserSession
	if err := json.Unmarshal(envelope["data"], &started); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}

	// Wrong visitor cannot advance the attempt
	resp, _ = doRequest(t, http.MethodPost, fmt.Sprintf("%s/sessions/%s/complete-step", base, started.ID), "intruder", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}

	for i := 0; i < 3; i++ {
		resp, envelope = doRequest(t, http.MethodPost, fmt.Sprintf("%s/sessions/%s/complete-step", base, started.ID), "visitor-1", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("step %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	var result struct {
		Completed bool `json:"completed"`
		NextStep  *int `json:"next_step"`
	}
	if err := json.Unmarshal(envelope["data"], &result); err != nil {
		t.Fatalf("failed to decode completion: %v", err)
	}
	if !result.Completed || result.NextStep != nil {
		t.Errorf("expected terminal completion, got %+v", result)
	}

	// Advancing past the end reports a conflict
	resp, _ = doRequest(t, http.MethodPost, fmt.Sprintf("%s/sessions/%s/complete-step", base, started.ID), "visitor-1", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}

	resp, envelope = doRequest(t, http.MethodGet, fmt.Sprintf("%s/sessions/%s/summary", base, started.ID), "visitor-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", resp.StatusCode)
	}
	var s summary.Summary
	if err := json.Unmarshal(envelope["data"], &s); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if s.CompletedSteps != 3 || s.TotalSteps != 3 {
		t.Errorf("unexpected summary counts: %d/%d", s.CompletedSteps, s.TotalSteps)
	}
}

func TestStartValidation(t *testing.T) {
	ts, repo := newTestServer(t)
	projectID := seedProject(t, repo)
	base := ts.URL + "/api/v1"

	resp, _ := doRequest(t, http.MethodPost, fmt.Sprintf("%s/projects/%d/start", base, projectID), "visitor-1", map[string]string{"timeframe": "90m"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid timeframe: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, http.MethodPost, base+"/projects/9999/start", "visitor-1", map[string]string{"timeframe": "6h"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing project: expected 404, got %d", resp.StatusCode)
	}

	// No 48h plan exists for this project
	resp, _ = doRequest(t, http.MethodPost, fmt.Sprintf("%s/projects/%d/start", base, projectID), "visitor-1", map[string]string{"timeframe": "48h"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("missing steps: expected 409, got %d", resp.StatusCode)
	}
}

func TestGenerateProject(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, envelope := doRequest(t, http.MethodPost, ts.URL+"/api/v1/projects/generate", "visitor-1", map[string]string{
		"track":      "python",
		"difficulty": "beginner",
		"timeframe":  "6h",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var project models.Project
	if err := json.Unmarshal(envelope["data"], &project); err != nil {
		t.Fatalf("failed to decode project: %v", err)
	}
	if !project.IsGenerated {
		t.Error("expected a generated project")
	}

	resp, _ = doRequest(t, http.MethodPost, ts.URL+"/api/v1/projects/generate", "visitor-1", map[string]string{
		"track":      "cobol",
		"difficulty": "beginner",
		"timeframe":  "6h",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid track: expected 400, got %d", resp.StatusCode)
	}
}
