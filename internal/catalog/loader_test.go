package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

const validProject = `
title: Recipe Finder
description: Search and save recipes.
track: frontend
difficulty: beginner
steps:
  6h:
    - number: 1
      title: Project Setup
      technologies: [HTML, Git]
      estimated_time: 60
    - number: 2
      title: Build the Search Form
      technologies: [HTML, CSS]
      estimated_time: 120
  12h:
    - number: 1
      title: Project Setup
      technologies: [HTML, Git]
      estimated_time: 60
    - number: 2
      title: Build the Search Form
      technologies: [HTML, CSS]
      estimated_time: 120
    - number: 3
      title: Wire Up the API
      technologies: [JavaScript]
      estimated_time: 180
resources:
  - name: Starter Kit
    type: zip
    path: recipe/starter.zip
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestSeedFromFile(t *testing.T) {
	repo := storage.NewMemoryRepository()
	loader := NewLoader(repo)
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "recipe.yaml", validProject)

	created, err := loader.SeedFromFile(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected the project to be created")
	}

	project, err := repo.GetProjectByTitle(ctx, "Recipe Finder")
	if err != nil || project == nil {
		t.Fatalf("project not stored: %v", err)
	}
	if project.Track != models.TrackFrontend {
		t.Errorf("unexpected track: %q", project.Track)
	}

	count, err := repo.CountSteps(ctx, project.ID, models.Timeframe12h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 steps for 12h, got %d", count)
	}

	resources, err := repo.GetResources(ctx, project.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resources) != 1 || resources[0].ResourceType != models.ResourceZIP {
		t.Errorf("unexpected resources: %+v", resources)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := storage.NewMemoryRepository()
	loader := NewLoader(repo)
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "recipe.yaml", validProject)

	if _, err := loader.SeedFromFile(ctx, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, err := loader.SeedFromFile(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("second seed must be a no-op")
	}
}

func TestSeedFromDirSkipsBadFiles(t *testing.T) {
	repo := storage.NewMemoryRepository()
	loader := NewLoader(repo)
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", validProject)
	writeFile(t, dir, "broken.yaml", "title: [unclosed")

	seeded, err := loader.SeedFromDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded != 1 {
		t.Errorf("expected 1 project seeded, got %d", seeded)
	}
}

func TestValidateRejectsGappedNumbering(t *testing.T) {
	repo := storage.NewMemoryRepository()
	loader := NewLoader(repo)
	content := strings.Replace(validProject, "number: 2\n      title: Build the Search Form\n      technologies: [HTML, CSS]\n      estimated_time: 120\n  12h:", "number: 4\n      title: Build the Search Form\n      technologies: [HTML, CSS]\n      estimated_time: 120\n  12h:", 1)
	path := writeFile(t, t.TempDir(), "gapped.yaml", content)

	if _, err := loader.SeedFromFile(context.Background(), path); err == nil {
		t.Fatal("expected gapped numbering to be rejected")
	}
}

func TestValidateRejectsPrefixViolation(t *testing.T) {
	repo := storage.NewMemoryRepository()
	loader := NewLoader(repo)
	// 12h step 2 diverges from the 6h plan
	content := strings.Replace(validProject, "title: Build the Search Form\n      technologies: [HTML, CSS]\n      estimated_time: 120\n    - number: 3", "title: Something Else Entirely\n      technologies: [HTML, CSS]\n      estimated_time: 120\n    - number: 3", 1)
	path := writeFile(t, t.TempDir(), "diverged.yaml", content)

	_, err := loader.SeedFromFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected prefix violation to be rejected")
	}
	if !strings.Contains(err.Error(), "does not match") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadEnums(t *testing.T) {
	repo := storage.NewMemoryRepository()
	loader := NewLoader(repo)
	dir := t.TempDir()
	ctx := context.Background()

	cases := map[string]string{
		"track.yaml":      strings.Replace(validProject, "track: frontend", "track: blockchain", 1),
		"difficulty.yaml": strings.Replace(validProject, "difficulty: beginner", "difficulty: legendary", 1),
		"timeframe.yaml":  strings.Replace(validProject, "  6h:", "  5h:", 1),
		"resource.yaml":   strings.Replace(validProject, "type: zip", "type: torrent", 1),
	}
	for name, content := range cases {
		path := writeFile(t, dir, name, content)
		if _, err := loader.SeedFromFile(ctx, path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
