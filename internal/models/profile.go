package models

import "time"

// UserProfile holds a visitor's onboarding answers, keyed by an opaque
// session identifier. Created on the first onboarding visit; mutated once
// per onboarding question.
type UserProfile struct {
	ID                      int64           `json:"id"`
	SessionID               string          `json:"session_id"`
	ExperienceLevel         ExperienceLevel `json:"experience_level,omitempty"`
	InterestedTechnologies  []string        `json:"interested_technologies"`
	PreferredTracks         []Track         `json:"preferred_tracks"`
	PreferredDifficulty     Difficulty      `json:"preferred_difficulty,omitempty"`
	PreferredTimeframe      Timeframe       `json:"preferred_timeframe,omitempty"`
	InterestsKeywords       []string        `json:"interests_keywords"`
	OnboardingCompleted     bool            `json:"onboarding_completed"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// HasPreferences reports whether at least one preference field is set.
// A profile flagged complete without any preferences must be self-healed
// back to incomplete; any single non-empty field is sufficient.
func (p *UserProfile) HasPreferences() bool {
	return p.ExperienceLevel != "" ||
		len(p.InterestedTechnologies) > 0 ||
		len(p.PreferredTracks) > 0 ||
		p.PreferredDifficulty != "" ||
		p.PreferredTimeframe != "" ||
		len(p.InterestsKeywords) > 0
}
