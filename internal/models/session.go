package models

import (
	"math"
	"time"
)

// UserSession is one attempt at a project for a chosen timeframe.
// At most one incomplete attempt exists per (session_id, project, timeframe);
// starting again supersedes the old one. Terminal once Completed is true.
type UserSession struct {
	ID                string     `json:"id"`
	SessionID         string     `json:"session_id"`
	ProjectID         int64      `json:"project_id"`
	SelectedTimeframe Timeframe  `json:"selected_timeframe"`
	StartTime         time.Time  `json:"start_time"`
	CompletedSteps    []int      `json:"completed_steps"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	GithubRepo        string     `json:"github_repo,omitempty"`
}

// CurrentStep is derived from the completed set rather than tracked as an
// independent counter, so a duplicate completion request cannot advance it
// twice: it is always max(completed_steps)+1.
func (s *UserSession) CurrentStep() int {
	max := 0
	for _, n := range s.CompletedSteps {
		if n > max {
			max = n
		}
	}
	return max + 1
}

// HasCompleted reports whether the given step number is already in the
// completed set.
func (s *UserSession) HasCompleted(stepNumber int) bool {
	for _, n := range s.CompletedSteps {
		if n == stepNumber {
			return true
		}
	}
	return false
}

// ProgressPercentage returns round(100 * completed / total), 0 when the
// project has no steps.
func (s *UserSession) ProgressPercentage(totalSteps int) int {
	if totalSteps <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(len(s.CompletedSteps)) / float64(totalSteps)))
}

// RemainingTime returns the seconds left in the timeframe budget at the
// given instant, floored at 0. Expiry is informational only; it never
// completes a session by itself.
func (s *UserSession) RemainingTime(now time.Time) int {
	remaining := s.SelectedTimeframe.Duration() - now.Sub(s.StartTime)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// OwnedBy reports whether the attempt belongs to the given visitor
func (s *UserSession) OwnedBy(sessionID string) bool {
	return s.SessionID == sessionID
}
