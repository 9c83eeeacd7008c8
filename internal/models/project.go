package models

import "time"

// GenerationPrefs is the preference snapshot stored with a generated project
// for provenance.
type GenerationPrefs struct {
	Keywords  []string  `json:"keywords"`
	Interests []string  `json:"interests"`
	Timeframe Timeframe `json:"timeframe"`
}

// Project is a catalog entry (curated or generated). Immutable after
// creation except for administrative edits.
type Project struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Difficulty  Difficulty       `json:"difficulty"`
	Track       Track            `json:"track"`
	IsGenerated bool             `json:"is_generated"`
	Prefs       *GenerationPrefs `json:"user_preferences,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ProjectStep is one ordered step of a project for a given timeframe.
// For a given (project, timeframe) the step numbers are contiguous from 1,
// and longer timeframes carry a superset (by prefix) of shorter ones.
type ProjectStep struct {
	ID               int64     `json:"id"`
	ProjectID        int64     `json:"project_id"`
	StepNumber       int       `json:"step_number"`
	Timeframe        Timeframe `json:"timeframe"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Technologies     []string  `json:"technologies"`
	EstimatedTime    int       `json:"estimated_time"` // minutes
	LearningOutcomes string    `json:"learning_outcomes,omitempty"`
}

// ProjectResource is a read-only download artifact attached to a project.
// Not part of session progression.
type ProjectResource struct {
	ID           int64        `json:"id"`
	ProjectID    int64        `json:"project_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	ResourceType ResourceType `json:"resource_type"`
	FilePath     string       `json:"file_path"`
	FileSize     string       `json:"file_size,omitempty"`
	Order        int          `json:"order"`
}

// ProjectFilters narrows catalog listings
type ProjectFilters struct {
	Track      Track
	Difficulty Difficulty
	// Generated selects generated (true) or curated (false) projects when set
	Generated *bool
	Limit     int
	Offset    int
}
