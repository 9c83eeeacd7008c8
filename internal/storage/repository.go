package storage

import (
	"context"

	"github.com/solosprint/sprint-engine/internal/models"
)

// Repository defines the persistence contract for the catalog, profiles and
// session attempts.
type Repository interface {
	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	GetProjectByTitle(ctx context.Context, title string) (*models.Project, error)
	ListProjects(ctx context.Context, filters models.ProjectFilters) ([]*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	// Steps
	CreateStep(ctx context.Context, step *models.ProjectStep) error
	GetSteps(ctx context.Context, projectID int64, tf models.Timeframe) ([]*models.ProjectStep, error)
	GetStepsByNumbers(ctx context.Context, projectID int64, tf models.Timeframe, numbers []int) ([]*models.ProjectStep, error)
	CountSteps(ctx context.Context, projectID int64, tf models.Timeframe) (int, error)
	AvailableTimeframes(ctx context.Context, projectID int64) ([]models.Timeframe, error)
	ProjectTechnologies(ctx context.Context, projectID int64) ([]string, error)
	DeleteSteps(ctx context.Context, projectID int64) error

	// Resources
	CreateResource(ctx context.Context, res *models.ProjectResource) error
	GetResource(ctx context.Context, id int64) (*models.ProjectResource, error)
	GetResources(ctx context.Context, projectID int64) ([]*models.ProjectResource, error)

	// Profiles
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfile(ctx context.Context, sessionID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error

	// Session attempts
	CreateSession(ctx context.Context, s *models.UserSession) error
	GetSession(ctx context.Context, id string) (*models.UserSession, error)
	UpdateSession(ctx context.Context, s *models.UserSession) error
	DeleteIncompleteSessions(ctx context.Context, sessionID string, projectID int64, tf models.Timeframe) (int, error)
	CleanupDuplicateSessions(ctx context.Context) (int, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
