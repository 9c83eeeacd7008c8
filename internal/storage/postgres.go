package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solosprint/sprint-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Projects ---

// CreateProject inserts a project and fills in its assigned ID
func (r *PostgresRepository) CreateProject(ctx context.Context, p *models.Project) error {
	var prefsJSON []byte
	if p.Prefs != nil {
		var err error
		prefsJSON, err = json.Marshal(p.Prefs)
		if err != nil {
			return fmt.Errorf("failed to marshal preferences: %w", err)
		}
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO projects (title, description, difficulty, track, is_generated, user_preferences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		p.Title,
		p.Description,
		string(p.Difficulty),
		string(p.Track),
		p.IsGenerated,
		prefsJSON,
		p.CreatedAt,
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var difficulty, track string
	var prefsJSON []byte

	err := row.Scan(&p.ID, &p.Title, &p.Description, &difficulty, &track, &p.IsGenerated, &prefsJSON, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Difficulty = models.Difficulty(difficulty)
	p.Track = models.Track(track)

	if prefsJSON != nil {
		var prefs models.GenerationPrefs
		if err := json.Unmarshal(prefsJSON, &prefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
		p.Prefs = &prefs
	}

	return &p, nil
}

const projectColumns = "id, title, description, difficulty, track, is_generated, user_preferences, created_at"

// GetProject retrieves a project by ID (nil when not found)
func (r *PostgresRepository) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)

	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// GetProjectByTitle retrieves a project by exact title (nil when not found).
// Used by the catalog seeder for idempotent loads.
func (r *PostgresRepository) GetProjectByTitle(ctx context.Context, title string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE title = $1 ORDER BY created_at ASC LIMIT 1`, projectColumns)

	p, err := scanProject(r.pool.QueryRow(ctx, query, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project by title: %w", err)
	}
	return p, nil
}

// ListProjects returns projects matching filters, in creation order so
// recommendation tie-breaks stay deterministic.
func (r *PostgresRepository) ListProjects(ctx context.Context, filters models.ProjectFilters) ([]*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE 1=1`, projectColumns)
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Track != "" {
		query += fmt.Sprintf(" AND track = $%d", argNum)
		args = append(args, string(filters.Track))
		argNum++
	}

	if filters.Difficulty != "" {
		query += fmt.Sprintf(" AND difficulty = $%d", argNum)
		args = append(args, string(filters.Difficulty))
		argNum++
	}

	if filters.Generated != nil {
		query += fmt.Sprintf(" AND is_generated = $%d", argNum)
		args = append(args, *filters.Generated)
		argNum++
	}

	query += " ORDER BY created_at ASC, id ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// DeleteProject removes a project; steps and resources cascade
func (r *PostgresRepository) DeleteProject(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project not found: %d", id)
	}
	return nil
}

// --- Steps ---

// CreateStep inserts a project step and fills in its assigned ID
func (r *PostgresRepository) CreateStep(ctx context.Context, step *models.ProjectStep) error {
	techJSON, err := json.Marshal(step.Technologies)
	if err != nil {
		return fmt.Errorf("failed to marshal technologies: %w", err)
	}

	query := `
		INSERT INTO project_steps (project_id, step_number, timeframe, title, description, technologies, estimated_time, learning_outcomes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		step.ProjectID,
		step.StepNumber,
		string(step.Timeframe),
		step.Title,
		step.Description,
		techJSON,
		step.EstimatedTime,
		step.LearningOutcomes,
	).Scan(&step.ID)

	if err != nil {
		return fmt.Errorf("failed to create step: %w", err)
	}

	return nil
}

func scanSteps(rows pgx.Rows) ([]*models.ProjectStep, error) {
	var steps []*models.ProjectStep

	for rows.Next() {
		var step models.ProjectStep
		var timeframe string
		var techJSON []byte

		err := rows.Scan(
			&step.ID,
			&step.ProjectID,
			&step.StepNumber,
			&timeframe,
			&step.Title,
			&step.Description,
			&techJSON,
			&step.EstimatedTime,
			&step.LearningOutcomes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		step.Timeframe = models.Timeframe(timeframe)
		if techJSON != nil {
			if err := json.Unmarshal(techJSON, &step.Technologies); err != nil {
				return nil, fmt.Errorf("failed to unmarshal technologies: %w", err)
			}
		}

		steps = append(steps, &step)
	}

	return steps, rows.Err()
}

const stepColumns = "id, project_id, step_number, timeframe, title, description, technologies, estimated_time, learning_outcomes"

// GetSteps returns the ordered step sequence for (project, timeframe)
func (r *PostgresRepository) GetSteps(ctx context.Context, projectID int64, tf models.Timeframe) ([]*models.ProjectStep, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM project_steps
		WHERE project_id = $1 AND timeframe = $2
		ORDER BY step_number ASC
	`, stepColumns)

	rows, err := r.pool.Query(ctx, query, projectID, string(tf))
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	defer rows.Close()

	return scanSteps(rows)
}

// GetStepsByNumbers returns steps whose step_number is in the given set,
// ordered by step_number. Used by the summary builder.
func (r *PostgresRepository) GetStepsByNumbers(ctx context.Context, projectID int64, tf models.Timeframe, numbers []int) ([]*models.ProjectStep, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM project_steps
		WHERE project_id = $1 AND timeframe = $2 AND step_number = ANY($3)
		ORDER BY step_number ASC
	`, stepColumns)

	rows, err := r.pool.Query(ctx, query, projectID, string(tf), numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps by numbers: %w", err)
	}
	defer rows.Close()

	return scanSteps(rows)
}

// CountSteps returns the step count for (project, timeframe)
func (r *PostgresRepository) CountSteps(ctx context.Context, projectID int64, tf models.Timeframe) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM project_steps WHERE project_id = $1 AND timeframe = $2`,
		projectID, string(tf),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count steps: %w", err)
	}
	return count, nil
}

// AvailableTimeframes returns the distinct timeframes that have steps for a
// project, shortest first.
func (r *PostgresRepository) AvailableTimeframes(ctx context.Context, projectID int64) ([]models.Timeframe, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT timeframe FROM project_steps WHERE project_id = $1`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get available timeframes: %w", err)
	}
	defer rows.Close()

	present := make(map[models.Timeframe]bool)
	for rows.Next() {
		var tf string
		if err := rows.Scan(&tf); err != nil {
			return nil, fmt.Errorf("failed to scan timeframe: %w", err)
		}
		present[models.Timeframe(tf)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the canonical shortest-first order
	var result []models.Timeframe
	for _, tf := range models.Timeframes {
		if present[tf] {
			result = append(result, tf)
		}
	}
	return result, nil
}

// ProjectTechnologies returns the union of technology tags across all of a
// project's steps. Order is not significant.
func (r *PostgresRepository) ProjectTechnologies(ctx context.Context, projectID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT technologies FROM project_steps WHERE project_id = $1`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get project technologies: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var techs []string
	for rows.Next() {
		var techJSON []byte
		if err := rows.Scan(&techJSON); err != nil {
			return nil, fmt.Errorf("failed to scan technologies: %w", err)
		}
		var stepTechs []string
		if techJSON != nil {
			if err := json.Unmarshal(techJSON, &stepTechs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal technologies: %w", err)
			}
		}
		for _, t := range stepTechs {
			if !seen[t] {
				seen[t] = true
				techs = append(techs, t)
			}
		}
	}

	return techs, rows.Err()
}

// DeleteSteps removes all steps for a project
func (r *PostgresRepository) DeleteSteps(ctx context.Context, projectID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM project_steps WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}
	return nil
}

// --- Resources ---

// CreateResource inserts a project resource and fills in its assigned ID
func (r *PostgresRepository) CreateResource(ctx context.Context, res *models.ProjectResource) error {
	query := `
		INSERT INTO project_resources (project_id, name, description, resource_type, file_path, file_size, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		res.ProjectID,
		res.Name,
		res.Description,
		string(res.ResourceType),
		res.FilePath,
		res.FileSize,
		res.Order,
	).Scan(&res.ID)

	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return nil
}

const resourceColumns = "id, project_id, name, description, resource_type, file_path, file_size, display_order"

// GetResource retrieves a resource by ID (nil when not found)
func (r *PostgresRepository) GetResource(ctx context.Context, id int64) (*models.ProjectResource, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_resources WHERE id = $1`, resourceColumns)

	var res models.ProjectResource
	var resourceType string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.ProjectID,
		&res.Name,
		&res.Description,
		&resourceType,
		&res.FilePath,
		&res.FileSize,
		&res.Order,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	res.ResourceType = models.ResourceType(resourceType)
	return &res, nil
}

// GetResources returns a project's resources ordered by (display order, name)
func (r *PostgresRepository) GetResources(ctx context.Context, projectID int64) ([]*models.ProjectResource, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM project_resources
		WHERE project_id = $1
		ORDER BY display_order ASC, name ASC
	`, resourceColumns)

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.ProjectResource
	for rows.Next() {
		var res models.ProjectResource
		var resourceType string

		err := rows.Scan(
			&res.ID,
			&res.ProjectID,
			&res.Name,
			&res.Description,
			&resourceType,
			&res.FilePath,
			&res.FileSize,
			&res.Order,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}

		res.ResourceType = models.ResourceType(resourceType)
		resources = append(resources, &res)
	}

	return resources, rows.Err()
}

// --- Profiles ---

// CreateProfile inserts a profile and fills in its assigned ID
func (r *PostgresRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	techJSON, tracksJSON, keywordsJSON, err := marshalProfileLists(profile)
	if err != nil {
		return err
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO user_profiles (session_id, experience_level, interested_technologies, preferred_tracks, preferred_difficulty, preferred_timeframe, interests_keywords, onboarding_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		profile.SessionID,
		string(profile.ExperienceLevel),
		techJSON,
		tracksJSON,
		string(profile.PreferredDifficulty),
		string(profile.PreferredTimeframe),
		keywordsJSON,
		profile.OnboardingCompleted,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.ID)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetProfile retrieves a profile by visitor session ID (nil when not found)
func (r *PostgresRepository) GetProfile(ctx context.Context, sessionID string) (*models.UserProfile, error) {
	query := `
		SELECT id, session_id, experience_level, interested_technologies, preferred_tracks, preferred_difficulty, preferred_timeframe, interests_keywords, onboarding_completed, created_at, updated_at
		FROM user_profiles
		WHERE session_id = $1
	`

	var p models.UserProfile
	var experience, difficulty, timeframe string
	var techJSON, tracksJSON, keywordsJSON []byte

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&p.ID,
		&p.SessionID,
		&experience,
		&techJSON,
		&tracksJSON,
		&difficulty,
		&timeframe,
		&keywordsJSON,
		&p.OnboardingCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.ExperienceLevel = models.ExperienceLevel(experience)
	p.PreferredDifficulty = models.Difficulty(difficulty)
	p.PreferredTimeframe = models.Timeframe(timeframe)

	if techJSON != nil {
		if err := json.Unmarshal(techJSON, &p.InterestedTechnologies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal technologies: %w", err)
		}
	}
	if tracksJSON != nil {
		if err := json.Unmarshal(tracksJSON, &p.PreferredTracks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracks: %w", err)
		}
	}
	if keywordsJSON != nil {
		if err := json.Unmarshal(keywordsJSON, &p.InterestsKeywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
	}

	return &p, nil
}

// UpdateProfile persists profile field changes and refreshes updated_at
func (r *PostgresRepository) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	techJSON, tracksJSON, keywordsJSON, err := marshalProfileLists(profile)
	if err != nil {
		return err
	}

	profile.UpdatedAt = time.Now()

	query := `
		UPDATE user_profiles
		SET experience_level = $2, interested_technologies = $3, preferred_tracks = $4, preferred_difficulty = $5, preferred_timeframe = $6, interests_keywords = $7, onboarding_completed = $8, updated_at = $9
		WHERE session_id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		profile.SessionID,
		string(profile.ExperienceLevel),
		techJSON,
		tracksJSON,
		string(profile.PreferredDifficulty),
		string(profile.PreferredTimeframe),
		keywordsJSON,
		profile.OnboardingCompleted,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %s", profile.SessionID)
	}

	return nil
}

func marshalProfileLists(profile *models.UserProfile) (tech, tracks, keywords []byte, err error) {
	tech, err = json.Marshal(emptyIfNil(profile.InterestedTechnologies))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal technologies: %w", err)
	}

	trackStrs := make([]string, 0, len(profile.PreferredTracks))
	for _, t := range profile.PreferredTracks {
		trackStrs = append(trackStrs, string(t))
	}
	tracks, err = json.Marshal(trackStrs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal tracks: %w", err)
	}

	keywords, err = json.Marshal(emptyIfNil(profile.InterestsKeywords))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}

	return tech, tracks, keywords, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- Session attempts ---

// CreateSession inserts a session attempt
func (r *PostgresRepository) CreateSession(ctx context.Context, s *models.UserSession) error {
	stepsJSON, err := json.Marshal(emptyIntsIfNil(s.CompletedSteps))
	if err != nil {
		return fmt.Errorf("failed to marshal completed steps: %w", err)
	}

	query := `
		INSERT INTO user_sessions (id, session_id, project_id, selected_timeframe, start_time, completed_steps, completed, completed_at, github_repo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.SessionID,
		s.ProjectID,
		string(s.SelectedTimeframe),
		s.StartTime,
		stepsJSON,
		s.Completed,
		nullTime(s.CompletedAt),
		nullString(s.GithubRepo),
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session attempt by ID (nil when not found)
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*models.UserSession, error) {
	query := `
		SELECT id, session_id, project_id, selected_timeframe, start_time, completed_steps, completed, completed_at, github_repo
		FROM user_sessions
		WHERE id = $1
	`

	var s models.UserSession
	var timeframe string
	var stepsJSON []byte
	var completedAt sql.NullTime
	var githubRepo sql.NullString

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.SessionID,
		&s.ProjectID,
		&timeframe,
		&s.StartTime,
		&stepsJSON,
		&s.Completed,
		&completedAt,
		&githubRepo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.SelectedTimeframe = models.Timeframe(timeframe)
	s.GithubRepo = githubRepo.String

	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}

	if stepsJSON != nil {
		if err := json.Unmarshal(stepsJSON, &s.CompletedSteps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed steps: %w", err)
		}
	}

	return &s, nil
}

// UpdateSession persists session attempt state
func (r *PostgresRepository) UpdateSession(ctx context.Context, s *models.UserSession) error {
	stepsJSON, err := json.Marshal(emptyIntsIfNil(s.CompletedSteps))
	if err != nil {
		return fmt.Errorf("failed to marshal completed steps: %w", err)
	}

	query := `
		UPDATE user_sessions
		SET completed_steps = $2, completed = $3, completed_at = $4, github_repo = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		s.ID,
		stepsJSON,
		s.Completed,
		nullTime(s.CompletedAt),
		nullString(s.GithubRepo),
	)

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", s.ID)
	}

	return nil
}

// DeleteIncompleteSessions removes incomplete attempts for the
// (visitor, project, timeframe) triple, enforcing at most one live attempt.
func (r *PostgresRepository) DeleteIncompleteSessions(ctx context.Context, sessionID string, projectID int64, tf models.Timeframe) (int, error) {
	query := `
		DELETE FROM user_sessions
		WHERE session_id = $1 AND project_id = $2 AND selected_timeframe = $3 AND completed = false
	`

	result, err := r.pool.Exec(ctx, query, sessionID, projectID, string(tf))
	if err != nil {
		return 0, fmt.Errorf("failed to delete incomplete sessions: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// CleanupDuplicateSessions removes duplicate incomplete attempts, keeping
// only the most recently started one per (visitor, project, timeframe).
func (r *PostgresRepository) CleanupDuplicateSessions(ctx context.Context) (int, error) {
	query := `
		DELETE FROM user_sessions s
		USING user_sessions newer
		WHERE s.completed = false
		  AND newer.completed = false
		  AND s.session_id = newer.session_id
		  AND s.project_id = newer.project_id
		  AND s.selected_timeframe = newer.selected_timeframe
		  AND (s.start_time < newer.start_time OR (s.start_time = newer.start_time AND s.id < newer.id))
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup duplicate sessions: %w", err)
	}

	return int(result.RowsAffected()), nil
}

func emptyIntsIfNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
