package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solosprint/sprint-engine/internal/metrics"
	"github.com/solosprint/sprint-engine/internal/models"
	"github.com/solosprint/sprint-engine/internal/storage"
)

// Common errors
var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNotSessionOwner     = errors.New("session does not belong to caller")
	ErrInvalidTimeframe    = errors.New("invalid timeframe")
	ErrNoStepsForTimeframe = errors.New("project has no steps for timeframe")
	ErrSessionCompleted    = errors.New("session already completed")
	ErrInvalidRepoURL      = errors.New("repository url must start with http:// or https://")
)

// Engine owns the per-attempt state machine: start, step progression,
// completion, and the countdown arithmetic. All mutating and state-revealing
// calls verify the caller's session identifier against the stored owner
// before touching anything.
type Engine struct {
	repo storage.Repository
	now  func() time.Time
}

// New creates a session engine
func New(repo storage.Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// NewWithClock creates a session engine with an explicit clock for tests
func NewWithClock(repo storage.Repository, now func() time.Time) *Engine {
	return &Engine{repo: repo, now: now}
}

// StepView is the state the presentation layer needs to render the current
// step of an attempt.
type StepView struct {
	Session          *models.UserSession   `json:"session"`
	CurrentStep      *models.ProjectStep   `json:"current_step,omitempty"`
	Steps            []*models.ProjectStep `json:"steps"`
	TotalSteps       int                   `json:"total_steps"`
	Progress         int                   `json:"progress_percentage"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	// Finished is true when the pointer has moved past the last step; the
	// caller should redirect to the summary.
	Finished bool `json:"finished"`
}

// TimerStatus is the read-only countdown snapshot. Computed on read; timer
// expiry never mutates the session.
type TimerStatus struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	Expired          bool `json:"is_expired"`
	Progress         int  `json:"progress"`
	CurrentStep      int  `json:"current_step"`
	TotalSteps       int  `json:"total_steps"`
	Completed        bool `json:"completed"`
}

// Start begins a new attempt at a project for a timeframe. Any incomplete
// attempt for the same (caller, project, timeframe) triple is discarded
// first, so at most one live attempt exists per triple.
func (e *Engine) Start(ctx context.Context, callerID string, projectID int64, tf models.Timeframe) (*models.UserSession, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeframe, tf)
	}

	project, err := e.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	count, err := e.repo.CountSteps(ctx, projectID, tf)
	if err != nil {
		return nil, fmt.Errorf("failed to count steps: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStepsForTimeframe, tf)
	}

	superseded, err := e.repo.DeleteIncompleteSessions(ctx, callerID, projectID, tf)
	if err != nil {
		return nil, fmt.Errorf("failed to discard prior attempts: %w", err)
	}
	if superseded > 0 {
		slog.Info("superseded prior attempts", "count", superseded, "project", projectID, "timeframe", tf)
	}

	session := &models.UserSession{
		ID:                uuid.New().String(),
		SessionID:         callerID,
		ProjectID:         projectID,
		SelectedTimeframe: tf,
		StartTime:         e.now(),
		CompletedSteps:    []int{},
	}

	if err := e.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsStarted.Inc()

	slog.Info("session started",
		"id", session.ID,
		"project", projectID,
		"timeframe", tf,
		"total_steps", count,
	)

	return session, nil
}

// get loads an attempt and verifies ownership. A mismatched caller gets the
// authorization error, never details of the stored session.
func (e *Engine) get(ctx context.Context, callerID, attemptID string) (*models.UserSession, error) {
	session, err := e.repo.GetSession(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.OwnedBy(callerID) {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// CurrentStep returns the attempt's step view. When the derived step pointer
// has moved past the final step the view is marked finished even if the
// completed flag was never stamped.
func (e *Engine) CurrentStep(ctx context.Context, callerID, attemptID string) (*StepView, error) {
	session, err := e.get(ctx, callerID, attemptID)
	if err != nil {
		return nil, err
	}

	steps, err := e.repo.GetSteps(ctx, session.ProjectID, session.SelectedTimeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}

	view := &StepView{
		Session:          session,
		Steps:            steps,
		TotalSteps:       len(steps),
		Progress:         session.ProgressPercentage(len(steps)),
		RemainingSeconds: session.RemainingTime(e.now()),
	}

	current := session.CurrentStep()
	for _, step := range steps {
		if step.StepNumber == current {
			view.CurrentStep = step
			break
		}
	}

	if view.CurrentStep == nil {
		view.Finished = true
	}

	return view, nil
}

// CompleteStep marks the current step done and advances the attempt.
// Idempotent: the current step joins the completed set only once, and
// because the pointer is derived from that set, a duplicate request cannot
// double-advance. Completing the final step stamps the terminal state.
func (e *Engine) CompleteStep(ctx context.Context, callerID, attemptID string) (*models.UserSession, error) {
	session, err := e.get(ctx, callerID, attemptID)
	if err != nil {
		return nil, err
	}

	if session.Completed {
		return nil, ErrSessionCompleted
	}

	totalSteps, err := e.repo.CountSteps(ctx, session.ProjectID, session.SelectedTimeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to count steps: %w", err)
	}

	current := session.CurrentStep()
	if current > totalSteps {
		// Pointer already past the end; nothing left to complete
		return nil, ErrSessionCompleted
	}

	if !session.HasCompleted(current) {
		session.CompletedSteps = append(session.CompletedSteps, current)
	}

	if len(session.CompletedSteps) >= totalSteps {
		session.Completed = true
		completedAt := e.now()
		session.CompletedAt = &completedAt
	}

	if err := e.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	metrics.StepsCompleted.Inc()
	if session.Completed {
		metrics.SessionsCompleted.Inc()
		slog.Info("session completed", "id", session.ID, "project", session.ProjectID)
	}

	return session, nil
}

// TimerStatus returns the countdown snapshot for an attempt
func (e *Engine) TimerStatus(ctx context.Context, callerID, attemptID string) (*TimerStatus, error) {
	session, err := e.get(ctx, callerID, attemptID)
	if err != nil {
		return nil, err
	}

	totalSteps, err := e.repo.CountSteps(ctx, session.ProjectID, session.SelectedTimeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to count steps: %w", err)
	}

	remaining := session.RemainingTime(e.now())

	return &TimerStatus{
		RemainingSeconds: remaining,
		Expired:          remaining == 0,
		Progress:         session.ProgressPercentage(totalSteps),
		CurrentStep:      session.CurrentStep(),
		TotalSteps:       totalSteps,
		Completed:        session.Completed,
	}, nil
}

// SubmitRepo stores the submitted repository URL verbatim. Allowed in any
// state, including after completion (resubmission overwrites).
func (e *Engine) SubmitRepo(ctx context.Context, callerID, attemptID, url string) (*models.UserSession, error) {
	session, err := e.get(ctx, callerID, attemptID)
	if err != nil {
		return nil, err
	}

	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, ErrInvalidRepoURL
	}

	session.GithubRepo = url
	if err := e.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store repo url: %w", err)
	}

	return session, nil
}

// Get returns the attempt after an ownership check
func (e *Engine) Get(ctx context.Context, callerID, attemptID string) (*models.UserSession, error) {
	return e.get(ctx, callerID, attemptID)
}
