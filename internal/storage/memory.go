package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/solosprint/sprint-engine/internal/models"
)

// MemoryRepository is an in-memory Repository used by tests and local
// experiments. Semantics mirror the Postgres implementation, including
// listing order and duplicate-session cleanup.
type MemoryRepository struct {
	mu sync.RWMutex

	nextID    int64
	projects  map[int64]*models.Project
	steps     map[int64][]*models.ProjectStep
	resources map[int64]*models.ProjectResource
	profiles  map[string]*models.UserProfile
	sessions  map[string]*models.UserSession
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:    1,
		projects:  make(map[int64]*models.Project),
		steps:     make(map[int64][]*models.ProjectStep),
		resources: make(map[int64]*models.ProjectResource),
		profiles:  make(map[string]*models.UserProfile),
		sessions:  make(map[string]*models.UserSession),
	}
}

func (m *MemoryRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// Projects

func (m *MemoryRepository) CreateProject(ctx context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.id()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) GetProjectByTitle(ctx context.Context, title string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.projects {
		if p.Title == title {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) ListProjects(ctx context.Context, filters models.ProjectFilters) ([]*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Project
	for _, p := range m.projects {
		if filters.Track != "" && p.Track != filters.Track {
			continue
		}
		if filters.Difficulty != "" && p.Difficulty != filters.Difficulty {
			continue
		}
		if filters.Generated != nil && p.IsGenerated != *filters.Generated {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return []*models.Project{}, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	if out == nil {
		out = []*models.Project{}
	}
	return out, nil
}

func (m *MemoryRepository) DeleteProject(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.projects, id)
	delete(m.steps, id)
	return nil
}

// Steps

func (m *MemoryRepository) CreateStep(ctx context.Context, step *models.ProjectStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	step.ID = m.id()
	cp := *step
	m.steps[step.ProjectID] = append(m.steps[step.ProjectID], &cp)
	return nil
}

func (m *MemoryRepository) GetSteps(ctx context.Context, projectID int64, tf models.Timeframe) ([]*models.ProjectStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*models.ProjectStep{}
	for _, s := range m.steps[projectID] {
		if s.Timeframe == tf {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepNumber < out[j].StepNumber })
	return out, nil
}

func (m *MemoryRepository) GetStepsByNumbers(ctx context.Context, projectID int64, tf models.Timeframe, numbers []int) ([]*models.ProjectStep, error) {
	want := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		want[n] = true
	}

	steps, err := m.GetSteps(ctx, projectID, tf)
	if err != nil {
		return nil, err
	}

	out := []*models.ProjectStep{}
	for _, s := range steps {
		if want[s.StepNumber] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryRepository) CountSteps(ctx context.Context, projectID int64, tf models.Timeframe) (int, error) {
	steps, err := m.GetSteps(ctx, projectID, tf)
	if err != nil {
		return 0, err
	}
	return len(steps), nil
}

func (m *MemoryRepository) AvailableTimeframes(ctx context.Context, projectID int64) ([]models.Timeframe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	present := make(map[models.Timeframe]bool)
	for _, s := range m.steps[projectID] {
		present[s.Timeframe] = true
	}

	out := []models.Timeframe{}
	for _, tf := range models.Timeframes {
		if present[tf] {
			out = append(out, tf)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ProjectTechnologies(ctx context.Context, projectID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	out := []string{}
	for _, s := range m.steps[projectID] {
		for _, t := range s.Technologies {
			key := strings.ToLower(t)
			if !seen[key] {
				seen[key] = true
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (m *MemoryRepository) DeleteSteps(ctx context.Context, projectID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.steps, projectID)
	return nil
}

// Resources

func (m *MemoryRepository) CreateResource(ctx context.Context, res *models.ProjectResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res.ID = m.id()
	cp := *res
	m.resources[res.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetResource(ctx context.Context, id int64) (*models.ProjectResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resources[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepository) GetResources(ctx context.Context, projectID int64) ([]*models.ProjectResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*models.ProjectResource{}
	for _, r := range m.resources {
		if r.ProjectID == projectID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].ID < out[j].ID
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

// Profiles

func (m *MemoryRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile.ID = m.id()
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	cp := *profile
	m.profiles[profile.SessionID] = &cp
	return nil
}

func (m *MemoryRepository) GetProfile(ctx context.Context, sessionID string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile.UpdatedAt = time.Now()
	cp := *profile
	m.profiles[profile.SessionID] = &cp
	return nil
}

// Session attempts

func (m *MemoryRepository) CreateSession(ctx context.Context, s *models.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetSession(ctx context.Context, id string) (*models.UserSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) UpdateSession(ctx context.Context, s *models.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryRepository) DeleteIncompleteSessions(ctx context.Context, sessionID string, projectID int64, tf models.Timeframe) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.SessionID == sessionID && s.ProjectID == projectID && s.SelectedTimeframe == tf && !s.Completed {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryRepository) CleanupDuplicateSessions(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct {
		sessionID string
		projectID int64
		tf        models.Timeframe
	}

	newest := make(map[key]*models.UserSession)
	for _, s := range m.sessions {
		if s.Completed {
			continue
		}
		k := key{s.SessionID, s.ProjectID, s.SelectedTimeframe}
		if cur, ok := newest[k]; !ok || s.StartTime.After(cur.StartTime) {
			newest[k] = s
		}
	}

	removed := 0
	for id, s := range m.sessions {
		if s.Completed {
			continue
		}
		k := key{s.SessionID, s.ProjectID, s.SelectedTimeframe}
		if newest[k].ID != id {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Health

func (m *MemoryRepository) Ping(ctx context.Context) error { return nil }

func (m *MemoryRepository) Close() error { return nil }
