package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

// Summary is the accomplishment record built from a finished (or in
// progress) attempt. Everything is derived from the completed steps; the
// builder never mutates the session.
type Summary struct {
	ProjectTitle       string   `json:"project_title"`
	ProjectTrack       string   `json:"project_track"`
	Difficulty         string   `json:"difficulty"`
	Timeframe          string   `json:"timeframe"`
	CompletedSteps     int      `json:"completed_steps"`
	TotalSteps         int      `json:"total_steps"`
	TechnologiesUsed   []string `json:"technologies_used"`
	Achievements       []string `json:"achievements"`
	SkillsDemonstrated []string `json:"skills_demonstrated"`
	CVBulletPoints     []string `json:"cv_bullet_points"`
	GithubRepo         string   `json:"github_repo,omitempty"`
}

// Builder assembles attempt summaries
type Builder struct {
	repo storage.Repository
}

func New(repo storage.Repository) *Builder {
	return &Builder{repo: repo}
}

// Build produces the summary for an attempt. Only steps actually in the
// completed set contribute; technologies keep first-occurrence order across
// steps sorted by step number.
func (b *Builder) Build(ctx context.Context, session *models.UserSession) (*Summary, error) {
	project, err := b.repo.GetProject(ctx, session.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %d not found", session.ProjectID)
	}

	totalSteps, err := b.repo.CountSteps(ctx, session.ProjectID, session.SelectedTimeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to count steps: %w", err)
	}

	steps, err := b.repo.GetStepsByNumbers(ctx, session.ProjectID, session.SelectedTimeframe, session.CompletedSteps)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed steps: %w", err)
	}

	s := &Summary{
		ProjectTitle:   project.Title,
		ProjectTrack:   string(project.Track),
		Difficulty:     string(project.Difficulty),
		Timeframe:      string(session.SelectedTimeframe),
		CompletedSteps: len(steps),
		TotalSteps:     totalSteps,
		GithubRepo:     session.GithubRepo,
	}

	s.TechnologiesUsed = collectTechnologies(steps)
	s.Achievements = achievements(steps)
	s.SkillsDemonstrated = skills(project, s.TechnologiesUsed)
	s.CVBulletPoints = cvBulletPoints(project, session, s)

	return s, nil
}

// collectTechnologies deduplicates step technologies preserving the order of
// first occurrence. Steps arrive sorted by step number.
func collectTechnologies(steps []*models.ProjectStep) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, step := range steps {
		for _, tech := range step.Technologies {
			key := strings.ToLower(tech)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tech)
		}
	}
	return out
}

func achievements(steps []*models.ProjectStep) []string {
	out := []string{}
	for _, step := range steps {
		out = append(out, fmt.Sprintf("Completed: %s", step.Title))
	}
	return out
}

func skills(project *models.Project, technologies []string) []string {
	out := []string{
		fmt.Sprintf("%s development", titleCase(string(project.Track))),
		"Project planning and execution",
		"Time-boxed delivery",
	}
	out = append(out, technologies...)
	return out
}

func cvBulletPoints(project *models.Project, session *models.UserSession, s *Summary) []string {
	points := []string{
		fmt.Sprintf("Built %s, a %s %s project, within a %s-hour sprint",
			project.Title, s.Difficulty, s.ProjectTrack, timeframeHours(session.SelectedTimeframe)),
	}
	if len(s.TechnologiesUsed) > 0 {
		points = append(points, fmt.Sprintf("Worked with %s", strings.Join(s.TechnologiesUsed, ", ")))
	}
	points = append(points, fmt.Sprintf("Completed %d of %d project milestones", s.CompletedSteps, s.TotalSteps))
	if session.GithubRepo != "" {
		points = append(points, fmt.Sprintf("Published source code at %s", session.GithubRepo))
	}
	return points
}

func timeframeHours(tf models.Timeframe) string {
	return fmt.Sprintf("%d", tf.Hours())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
