package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/solosprint/sprint-engine/internal/metrics"
	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

// Validation errors. Generation rejects unknown enum values before any write;
// the form layer is expected to pre-validate against the option sets.
var (
	ErrUnknownTrack      = errors.New("unknown track")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownTimeframe  = errors.New("unknown timeframe")
)

// Request holds generation inputs. Keywords and Interests are optional.
type Request struct {
	Track      models.Track
	Difficulty models.Difficulty
	Timeframe  models.Timeframe
	Keywords   []string
	Interests  []string
}

// Generator synthesizes a custom project with an ordered step sequence from
// the template tables. The only nondeterminism is the keyword/template
// choice, which sits behind the injected random source so tests can seed it.
// One generator serves all requests; rand.Rand is not goroutine-safe, so the
// source is guarded by a mutex.
type Generator struct {
	repo storage.Repository
	mu   sync.Mutex
	rng  *rand.Rand
}

// New creates a generator with a time-seeded random source
func New(repo storage.Repository) *Generator {
	return NewWithRand(repo, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a generator with an explicit random source
func NewWithRand(repo storage.Repository, rng *rand.Rand) *Generator {
	return &Generator{repo: repo, rng: rng}
}

// Generate creates and persists a project tagged is_generated=true, plus its
// step sequence for the requested timeframe.
func (g *Generator) Generate(ctx context.Context, req Request) (*models.Project, error) {
	if !req.Track.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, req.Track)
	}
	if !req.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, req.Difficulty)
	}
	if !req.Timeframe.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeframe, req.Timeframe)
	}

	keyword := g.pickKeyword(req.Keywords, req.Interests)
	template := g.pickTemplate(req.Track, req.Difficulty)

	title := strings.ReplaceAll(template.Title, "{keyword}", keyword)
	description := strings.ReplaceAll(template.Description, "{keyword}", keyword)
	description = strings.ReplaceAll(description, "{track}", string(req.Track))

	project := &models.Project{
		Title:       title,
		Description: description,
		Difficulty:  req.Difficulty,
		Track:       req.Track,
		IsGenerated: true,
		Prefs: &models.GenerationPrefs{
			Keywords:  emptyIfNil(req.Keywords),
			Interests: emptyIfNil(req.Interests),
			Timeframe: req.Timeframe,
		},
	}

	if err := g.repo.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to persist generated project: %w", err)
	}

	if err := g.generateSteps(ctx, project, req, template.Technologies); err != nil {
		return nil, err
	}

	metrics.ProjectsGenerated.Inc()

	slog.Info("project generated",
		"id", project.ID,
		"title", project.Title,
		"track", req.Track,
		"difficulty", req.Difficulty,
		"timeframe", req.Timeframe,
	)

	return project, nil
}

// intn draws from the shared source under the lock
func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// pickKeyword selects the keyword by priority: explicit keywords, then
// interests, then the built-in pool.
func (g *Generator) pickKeyword(keywords, interests []string) string {
	if len(keywords) > 0 {
		return keywords[g.intn(len(keywords))]
	}
	if len(interests) > 0 {
		return interests[g.intn(len(interests))]
	}
	return Keywords[g.intn(len(Keywords))]
}

// pickTemplate resolves the template bucket for (track, difficulty), falling
// back through difficulties in fixed order, then to the generic template.
func (g *Generator) pickTemplate(track models.Track, difficulty models.Difficulty) projectTemplate {
	bucket := projectTemplates[track][difficulty]
	if len(bucket) == 0 {
		for _, d := range models.Difficulties {
			if candidates := projectTemplates[track][d]; len(candidates) > 0 {
				bucket = candidates
				break
			}
		}
	}
	if len(bucket) == 0 {
		return fallbackTemplate
	}
	return bucket[g.intn(len(bucket))]
}

// generateSteps slices the master step list by timeframe and persists the
// slice with contiguous 1-based step numbers.
func (g *Generator) generateSteps(ctx context.Context, project *models.Project, req Request, baseTechnologies []string) error {
	master := masterSteps(req.Track, req.Difficulty)

	count := req.Timeframe.MaxSteps()
	if count > len(master) {
		count = len(master)
	}
	slice := master[:count]

	evenSplit := req.Timeframe.Hours() * 60 / len(slice)

	for idx, tmpl := range slice {
		estimated := tmpl.EstimatedTime
		if estimated <= 0 {
			estimated = evenSplit
		}

		step := &models.ProjectStep{
			ProjectID:        project.ID,
			StepNumber:       idx + 1,
			Timeframe:        req.Timeframe,
			Title:            tmpl.Title,
			Description:      tmpl.Description,
			Technologies:     mergeTechnologies(baseTechnologies, tmpl.Technologies),
			EstimatedTime:    estimated,
			LearningOutcomes: tmpl.LearningOutcomes,
		}

		if err := g.repo.CreateStep(ctx, step); err != nil {
			return fmt.Errorf("failed to persist step %d: %w", idx+1, err)
		}
	}

	return nil
}

// mergeTechnologies unions the template's base technologies with a step's
// own tags, removing duplicates. Order is not significant.
func mergeTechnologies(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, t := range base {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range extra {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
