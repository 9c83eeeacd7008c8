package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a Go SDK for the sprint-engine API. Every call is scoped to the
// visitor identifier given at construction.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new sprint-engine client
func NewClient(baseURL, sessionID string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		sessionID: sessionID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// --- Response types ---

// Profile is a visitor's onboarding state
type Profile struct {
	ID                     int64     `json:"id"`
	SessionID              string    `json:"session_id"`
	ExperienceLevel        string    `json:"experience_level,omitempty"`
	InterestedTechnologies []string  `json:"interested_technologies"`
	PreferredTracks        []string  `json:"preferred_tracks"`
	PreferredDifficulty    string    `json:"preferred_difficulty,omitempty"`
	PreferredTimeframe     string    `json:"preferred_timeframe,omitempty"`
	InterestsKeywords      []string  `json:"interests_keywords"`
	OnboardingCompleted    bool      `json:"onboarding_completed"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Project is a catalog entry
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"`
	Track       string    `json:"track"`
	IsGenerated bool      `json:"is_generated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Step is one ordered step of a project attempt
type Step struct {
	ID               int64    `json:"id"`
	ProjectID        int64    `json:"project_id"`
	StepNumber       int      `json:"step_number"`
	Timeframe        string   `json:"timeframe"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Technologies     []string `json:"technologies"`
	EstimatedTime    int      `json:"estimated_time"`
	LearningOutcomes string   `json:"learning_outcomes,omitempty"`
}

// Session is a project attempt
type Session struct {
	ID                string     `json:"id"`
	SessionID         string     `json:"session_id"`
	ProjectID         int64      `json:"project_id"`
	SelectedTimeframe string     `json:"selected_timeframe"`
	StartTime         time.Time  `json:"start_time"`
	CompletedSteps    []int      `json:"completed_steps"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	GithubRepo        string     `json:"github_repo,omitempty"`
}

// StepView is the session state for rendering the current step
type StepView struct {
	Session          *Session `json:"session"`
	CurrentStep      *Step    `json:"current_step,omitempty"`
	Steps            []*Step  `json:"steps"`
	TotalSteps       int      `json:"total_steps"`
	Progress         int      `json:"progress_percentage"`
	RemainingSeconds int      `json:"remaining_seconds"`
	Finished         bool     `json:"finished"`
}

// TimerStatus is a countdown snapshot
type TimerStatus struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	Expired          bool `json:"is_expired"`
	Progress         int  `json:"progress"`
	CurrentStep      int  `json:"current_step"`
	TotalSteps       int  `json:"total_steps"`
	Completed        bool `json:"completed"`
}

// Summary is the accomplishment record of an attempt
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

// GenerateRequest holds project generation inputs
type GenerateRequest struct {
	Track      string   `json:"track"`
	Difficulty string   `json:"difficulty"`
	Timeframe  string   `json:"timeframe"`
	Keywords   []string `json:"keywords,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

// --- Onboarding ---

// SetExperience answers onboarding question one
func (c *Client) SetExperience(ctx context.Context, level string) (*Profile, error) {
	return post[Profile](ctx, c, "/api/v1/onboarding/experience", map[string]string{"experience_level": level})
}

// SetTechnologies answers onboarding question two
func (c *Client) SetTechnologies(ctx context.Context, technologies []string) (*Profile, error) {
	return post[Profile](ctx, c, "/api/v1/onboarding/technologies", map[string][]string{"technologies": technologies})
}

// SetTracks answers onboarding question three
func (c *Client) SetTracks(ctx context.Context, tracks []string, difficulty, timeframe string) (*Profile, error) {
	return post[Profile](ctx, c, "/api/v1/onboarding/tracks", map[string]interface{}{
		"tracks":     tracks,
		"difficulty": difficulty,
		"timeframe":  timeframe,
	})
}

// SetInterests answers the final onboarding question and completes the flow
func (c *Client) SetInterests(ctx context.Context, interests string) (*Profile, error) {
	return post[Profile](ctx, c, "/api/v1/onboarding/interests", map[string]string{"interests": interests})
}

// ResetOnboarding clears the profile so onboarding can run again
func (c *Client) ResetOnboarding(ctx context.Context) (*Profile, error) {
	return post[Profile](ctx, c, "/api/v1/onboarding/reset", struct{}{})
}

// GetProfile returns the visitor's profile
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	return get[Profile](ctx, c, "/api/v1/profile")
}

// --- Projects ---

// Recommendations returns the personalized project list
func (c *Client) Recommendations(ctx context.Context, limit int) ([]*Project, error) {
	path := "/api/v1/recommendations"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	result, err := get[[]*Project](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GenerateProject creates a personalized project
func (c *Client) GenerateProject(ctx context.Context, req GenerateRequest) (*Project, error) {
	return post[Project](ctx, c, "/api/v1/projects/generate", req)
}

// --- Sessions ---

// StartSession begins an attempt at a project for a timeframe
func (c *Client) StartSession(ctx context.Context, projectID int64, timeframe string) (*Session, error) {
	return post[Session](ctx, c, fmt.Sprintf("/api/v1/projects/%d/start", projectID), map[string]string{"timeframe": timeframe})
}

// GetStep returns the current step view of an attempt
func (c *Client) GetStep(ctx context.Context, sessionID string) (*StepView, error) {
	return get[StepView](ctx, c, fmt.Sprintf("/api/v1/sessions/%s", sessionID))
}

// CompleteStep marks the current step done
func (c *Client) CompleteStep(ctx context.Context, sessionID string) (*Session, error) {
	result, err := post[struct {
		Session *Session `json:"session"`
	}](ctx, c, fmt.Sprintf("/api/v1/sessions/%s/complete-step", sessionID), struct{}{})
	if err != nil {
		return nil, err
	}
	return result.Session, nil
}

// GetSummary returns the attempt summary
func (c *Client) GetSummary(ctx context.Context, sessionID string) (*Summary, error) {
	return get[Summary](ctx, c, fmt.Sprintf("/api/v1/sessions/%s/summary", sessionID))
}

// SubmitRepo stores the repository URL for an attempt
func (c *Client) SubmitRepo(ctx context.Context, sessionID, url string) (*Session, error) {
	return post[Session](ctx, c, fmt.Sprintf("/api/v1/sessions/%s/submit", sessionID), map[string]string{"github_repo": url})
}

// GetTimer returns a countdown snapshot
func (c *Client) GetTimer(ctx context.Context, sessionID string) (*TimerStatus, error) {
	return get[TimerStatus](ctx, c, fmt.Sprintf("/api/v1/sessions/%s/timer", sessionID))
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// --- Plumbing ---

func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return parse[T](resp)
}

func post[T any](ctx context.Context, c *Client, path string, payload interface{}) (*T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return parse[T](resp)
}

func parse[T any](resp []byte) (*T, error) {
	var result struct {
		Success bool `json:"success"`
		Data    *T   `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		if result.Error != nil {
			return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
		}
		return nil, fmt.Errorf("API error: request failed")
	}

	return result.Data, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
