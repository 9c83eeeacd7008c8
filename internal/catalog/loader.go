package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

// Loader reads the curated project catalog from YAML files and seeds the
// database. Seeding is idempotent: a project whose title already exists is
// skipped, so the loader can run on every boot.
type Loader struct {
	repo storage.Repository
}

// NewLoader creates a catalog loader
func NewLoader(repo storage.Repository) *Loader {
	return &Loader{repo: repo}
}

// SeedFromDir loads every YAML file in dir and seeds missing projects.
// A bad file is logged and skipped, never fatal.
func (l *Loader) SeedFromDir(ctx context.Context, dir string) (int, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	seeded := 0
	for _, file := range files {
		created, err := l.SeedFromFile(ctx, file)
		if err != nil {
			slog.Warn("failed to load catalog file", "file", file, "error", err)
			continue
		}
		if created {
			seeded++
		}
	}

	slog.Info("catalog seeded", "dir", dir, "files", len(files), "created", seeded)
	return seeded, nil
}

// SeedFromFile loads a single project file. Returns false when the project
// already exists.
func (l *Loader) SeedFromFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return false, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&pf); err != nil {
		return false, err
	}

	existing, err := l.repo.GetProjectByTitle(ctx, pf.Title)
	if err != nil {
		return false, fmt.Errorf("failed to check existing project: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	project := &models.Project{
		Title:       pf.Title,
		Description: pf.Description,
		Track:       models.Track(pf.Track),
		Difficulty:  models.Difficulty(pf.Difficulty),
	}
	if err := l.repo.CreateProject(ctx, project); err != nil {
		return false, fmt.Errorf("failed to create project: %w", err)
	}

	for tf, steps := range pf.Steps {
		timeframe := models.Timeframe(tf)
		for _, sf := range steps {
			step := &models.ProjectStep{
				ProjectID:        project.ID,
				StepNumber:       sf.Number,
				Timeframe:        timeframe,
				Title:            sf.Title,
				Description:      sf.Description,
				Technologies:     sf.Technologies,
				EstimatedTime:    sf.EstimatedTime,
				LearningOutcomes: sf.LearningOutcomes,
			}
			if err := l.repo.CreateStep(ctx, step); err != nil {
				return false, fmt.Errorf("failed to create step %d (%s): %w", sf.Number, tf, err)
			}
		}
	}

	for i, rf := range pf.Resources {
		resource := &models.ProjectResource{
			ProjectID:    project.ID,
			Name:         rf.Name,
			Description:  rf.Description,
			ResourceType: models.ResourceType(rf.Type),
			FilePath:     rf.Path,
			Order:        i + 1,
		}
		if rf.Order > 0 {
			resource.Order = rf.Order
		}
		if err := l.repo.CreateResource(ctx, resource); err != nil {
			return false, fmt.Errorf("failed to create resource %q: %w", rf.Name, err)
		}
	}

	slog.Info("catalog project seeded", "title", project.Title, "track", project.Track, "id", project.ID)
	return true, nil
}

// validate checks the file before anything is written: enum values, step
// numbering contiguous from 1 per timeframe, and each shorter timeframe's
// step list a prefix of every longer one.
func validate(pf *projectFile) error {
	if strings.TrimSpace(pf.Title) == "" {
		return fmt.Errorf("project title is required")
	}
	if !models.Track(pf.Track).Valid() {
		return fmt.Errorf("invalid track %q", pf.Track)
	}
	if !models.Difficulty(pf.Difficulty).Valid() {
		return fmt.Errorf("invalid difficulty %q", pf.Difficulty)
	}
	if len(pf.Steps) == 0 {
		return fmt.Errorf("project has no steps")
	}

	byTimeframe := make(map[models.Timeframe][]stepFile)
	for tf, steps := range pf.Steps {
		timeframe := models.Timeframe(tf)
		if !timeframe.Valid() {
			return fmt.Errorf("invalid timeframe %q", tf)
		}
		sorted := make([]stepFile, len(steps))
		copy(sorted, steps)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
		for i, sf := range sorted {
			if sf.Number != i+1 {
				return fmt.Errorf("timeframe %s: step numbers must run 1..n without gaps, got %d at position %d", tf, sf.Number, i+1)
			}
			if strings.TrimSpace(sf.Title) == "" {
				return fmt.Errorf("timeframe %s step %d: title is required", tf, sf.Number)
			}
		}
		byTimeframe[timeframe] = sorted
	}

	// Shorter timeframes must be prefixes of longer ones where both exist
	ordered := models.Timeframes
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			shorter, ok1 := byTimeframe[ordered[i]]
			longer, ok2 := byTimeframe[ordered[j]]
			if !ok1 || !ok2 {
				continue
			}
			if len(shorter) > len(longer) {
				return fmt.Errorf("timeframe %s has more steps than %s", ordered[i], ordered[j])
			}
			for k := range shorter {
				if shorter[k].Title != longer[k].Title {
					return fmt.Errorf("timeframe %s step %d (%q) does not match %s step %d (%q)",
						ordered[i], k+1, shorter[k].Title, ordered[j], k+1, longer[k].Title)
				}
			}
		}
	}

	for _, rf := range pf.Resources {
		if !models.ResourceType(rf.Type).Valid() {
			return fmt.Errorf("resource %q: invalid type %q", rf.Name, rf.Type)
		}
	}

	return nil
}

// --- YAML file structs ---

type projectFile struct {
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	Track       string                `yaml:"track"`
	Difficulty  string                `yaml:"difficulty"`
	Steps       map[string][]stepFile `yaml:"steps"`
	Resources   []resourceFile        `yaml:"resources"`
}

type stepFile struct {
	Number           int      `yaml:"number"`
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	Technologies     []string `yaml:"technologies"`
	EstimatedTime    int      `yaml:"estimated_time"`
	LearningOutcomes string   `yaml:"learning_outcomes"`
}

type resourceFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Path        string `yaml:"path"`
	Order       int    `yaml:"order"`
}
