package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

func seedAttempt(t *testing.T, repo *storage.MemoryRepository, completed []int) *models.UserSession {
	t.Helper()
	ctx := context.Background()

	project := &models.Project{
		Title:      "Personal Portfolio Website",
		Track:      models.TrackFrontend,
		Difficulty: models.DifficultyBeginner,
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}

	steps := []struct {
		title string
		techs []string
	}{
		{"Setup and Planning", []string{"HTML", "Git"}},
		{"Create HTML Structure", []string{"HTML"}},
		{"Style with CSS", []string{"CSS", "html"}},
		{"Add Interactivity", []string{"JavaScript", "CSS"}},
		{"Deploy Your Site", []string{"Git", "Netlify"}},
	}
	for i, st := range steps {
		step := &models.ProjectStep{
			ProjectID:    project.ID,
			StepNumber:   i + 1,
			Timeframe:    models.Timeframe6h,
			Title:        st.title,
			Technologies: st.techs,
		}
		if err := repo.CreateStep(ctx, step); err != nil {
			t.Fatalf("failed to seed step: %v", err)
		}
	}

	return &models.UserSession{
		ID:                "attempt-1",
		SessionID:         "visitor-1",
		ProjectID:         project.ID,
		SelectedTimeframe: models.Timeframe6h,
		CompletedSteps:    completed,
	}
}

func TestBuildFullCompletion(t *testing.T) {
	repo := storage.NewMemoryRepository()
	session := seedAttempt(t, repo, []int{1, 2, 3, 4, 5})
	session.GithubRepo = "https://github.com/me/portfolio"
	builder := New(repo)

	s, err := builder.Build(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.ProjectTitle != "Personal Portfolio Website" {
		t.Errorf("unexpected title: %q", s.ProjectTitle)
	}
	if s.CompletedSteps != 5 || s.TotalSteps != 5 {
		t.Errorf("unexpected counts: %d/%d", s.CompletedSteps, s.TotalSteps)
	}

	// First occurrence wins, case-insensitively
	want := []string{"HTML", "Git", "CSS", "JavaScript", "Netlify"}
	if len(s.TechnologiesUsed) != len(want) {
		t.Fatalf("expected %v, got %v", want, s.TechnologiesUsed)
	}
	for i, tech := range want {
		if s.TechnologiesUsed[i] != tech {
			t.Errorf("technology %d: expected %q, got %q", i, tech, s.TechnologiesUsed[i])
		}
	}

	if len(s.Achievements) != 5 {
		t.Fatalf("expected 5 achievements, got %v", s.Achievements)
	}
	if s.Achievements[0] != "Completed: Setup and Planning" {
		t.Errorf("unexpected first achievement: %q", s.Achievements[0])
	}

	if s.SkillsDemonstrated[0] != "Frontend development" {
		t.Errorf("unexpected first skill: %q", s.SkillsDemonstrated[0])
	}

	if len(s.CVBulletPoints) != 4 {
		t.Fatalf("expected 4 bullet points, got %v", s.CVBulletPoints)
	}
	if !strings.Contains(s.CVBulletPoints[0], "6-hour sprint") {
		t.Errorf("expected sprint duration in first bullet, got %q", s.CVBulletPoints[0])
	}
	if !strings.Contains(s.CVBulletPoints[3], session.GithubRepo) {
		t.Errorf("expected repo url in last bullet, got %q", s.CVBulletPoints[3])
	}
}

func TestBuildPartialCompletion(t *testing.T) {
	repo := storage.NewMemoryRepository()
	session := seedAttempt(t, repo, []int{1, 3})
	builder := New(repo)

	s, err := builder.Build(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.CompletedSteps != 2 || s.TotalSteps != 5 {
		t.Errorf("unexpected counts: %d/%d", s.CompletedSteps, s.TotalSteps)
	}

	// Only completed steps contribute
	want := []string{"HTML", "Git", "CSS"}
	if len(s.TechnologiesUsed) != len(want) {
		t.Fatalf("expected %v, got %v", want, s.TechnologiesUsed)
	}
	for i, tech := range want {
		if s.TechnologiesUsed[i] != tech {
			t.Errorf("technology %d: expected %q, got %q", i, tech, s.TechnologiesUsed[i])
		}
	}

	if len(s.Achievements) != 2 {
		t.Errorf("expected 2 achievements, got %v", s.Achievements)
	}

	// No repo submitted means no publication bullet
	for _, point := range s.CVBulletPoints {
		if strings.Contains(point, "Published") {
			t.Errorf("unexpected publication bullet: %q", point)
		}
	}
}

func TestBuildNothingCompleted(t *testing.T) {
	repo := storage.NewMemoryRepository()
	session := seedAttempt(t, repo, nil)
	builder := New(repo)

	s, err := builder.Build(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.CompletedSteps != 0 {
		t.Errorf("expected no completed steps, got %d", s.CompletedSteps)
	}
	if len(s.TechnologiesUsed) != 0 {
		t.Errorf("expected no technologies, got %v", s.TechnologiesUsed)
	}
	if len(s.Achievements) != 0 {
		t.Errorf("expected no achievements, got %v", s.Achievements)
	}
}
