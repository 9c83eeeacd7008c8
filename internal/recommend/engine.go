package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/solosprint/sprint-engine/internal/models"
)

// Scoring weights. Track and difficulty matches dominate; technology overlap
// and keyword hits refine the ordering.
const (
	trackWeight      = 3
	difficultyWeight = 2
	technologyWeight = 1
	keywordWeight    = 1
)

// ErrNoPreferences is returned when recommendation is requested for a profile
// with no usable preference fields. Callers should send the user back to
// onboarding instead.
var ErrNoPreferences = errors.New("profile has no preferences")

// Catalog is the read-only slice of the repository the engine needs
type Catalog interface {
	ListProjects(ctx context.Context, filters models.ProjectFilters) ([]*models.Project, error)
	ProjectTechnologies(ctx context.Context, projectID int64) ([]string, error)
}

// Engine scores and ranks curated catalog projects against a profile's
// declared preferences. Pure read; no side effects.
type Engine struct {
	catalog Catalog
}

// New creates a recommendation engine backed by the given catalog
func New(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Recommend returns up to limit curated projects ranked by preference match.
// Generated projects are never candidates. Ties are broken by catalog
// creation order, so results are stable for a fixed catalog and profile.
func (e *Engine) Recommend(ctx context.Context, profile *models.UserProfile, limit int) ([]*models.Project, error) {
	if profile == nil || !profile.HasPreferences() {
		return nil, ErrNoPreferences
	}

	curated := false
	candidates, err := e.catalog.ListProjects(ctx, models.ProjectFilters{Generated: &curated})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	type scored struct {
		project *models.Project
		score   int
		order   int
	}

	ranked := make([]scored, 0, len(candidates))
	for i, p := range candidates {
		techs, err := e.catalog.ProjectTechnologies(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load technologies for project %d: %w", p.ID, err)
		}
		ranked = append(ranked, scored{
			project: p,
			score:   Score(p, techs, profile),
			order:   i,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := make([]*models.Project, 0, len(ranked))
	for _, s := range ranked {
		result = append(result, s.project)
	}
	return result, nil
}

// Score computes the preference match score for a single candidate.
// techs is the union of the candidate's step technologies.
func Score(p *models.Project, techs []string, profile *models.UserProfile) int {
	score := 0

	for _, track := range profile.PreferredTracks {
		if p.Track == track {
			score += trackWeight
			break
		}
	}

	if profile.PreferredDifficulty != "" && p.Difficulty == profile.PreferredDifficulty {
		score += difficultyWeight
	}

	projectTechs := make(map[string]bool, len(techs))
	for _, t := range techs {
		projectTechs[strings.ToLower(t)] = true
	}
	for _, t := range profile.InterestedTechnologies {
		if projectTechs[strings.ToLower(t)] {
			score += technologyWeight
		}
	}

	title := strings.ToLower(p.Title)
	description := strings.ToLower(p.Description)
	for _, kw := range profile.InterestsKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) || strings.Contains(description, kw) {
			score += keywordWeight
		}
	}

	return score
}
