package models

import (
	"fmt"
	"time"
)

// Track is the technology domain a project belongs to
type Track string

const (
	TrackFrontend  Track = "frontend"
	TrackBackend   Track = "backend"
	TrackFullstack Track = "fullstack"
	TrackPython    Track = "python"
	TrackReact     Track = "react"
	TrackNodeJS    Track = "nodejs"
)

// Tracks lists all valid tracks in display order
var Tracks = []Track{TrackFrontend, TrackBackend, TrackFullstack, TrackPython, TrackReact, TrackNodeJS}

// Valid reports whether the track is one of the known values
func (t Track) Valid() bool {
	for _, known := range Tracks {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTrack validates a raw string as a Track
func ParseTrack(s string) (Track, error) {
	t := Track(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown track: %q", s)
	}
	return t, nil
}

// Difficulty is a project difficulty level
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists all valid difficulties, easiest first. The generator's
// fallback scan relies on this order.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDifficulty validates a raw string as a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty: %q", s)
	}
	return d, nil
}

// Timeframe is a fixed project-duration bucket controlling both the step
// count and the countdown budget.
type Timeframe string

const (
	Timeframe6h  Timeframe = "6h"
	Timeframe12h Timeframe = "12h"
	Timeframe24h Timeframe = "24h"
	Timeframe48h Timeframe = "48h"
)

// Timeframes lists all valid timeframes, shortest first. Step lists for a
// longer timeframe are a superset (by step_number prefix) of shorter ones.
var Timeframes = []Timeframe{Timeframe6h, Timeframe12h, Timeframe24h, Timeframe48h}

func (tf Timeframe) Valid() bool {
	for _, known := range Timeframes {
		if tf == known {
			return true
		}
	}
	return false
}

// ParseTimeframe validates a raw string as a Timeframe
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.Valid() {
		return "", fmt.Errorf("unknown timeframe: %q", s)
	}
	return tf, nil
}

// Hours returns the timeframe budget in whole hours
func (tf Timeframe) Hours() int {
	switch tf {
	case Timeframe6h:
		return 6
	case Timeframe12h:
		return 12
	case Timeframe24h:
		return 24
	case Timeframe48h:
		return 48
	}
	return 0
}

// Duration returns the timeframe budget as a duration
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.Hours()) * time.Hour
}

// MaxSteps returns how many steps of the master list a generated project
// takes for this timeframe.
func (tf Timeframe) MaxSteps() int {
	switch tf {
	case Timeframe6h:
		return 6
	case Timeframe12h:
		return 8
	case Timeframe24h:
		return 12
	case Timeframe48h:
		return 16
	}
	return 0
}

// ResourceType classifies a downloadable project resource
type ResourceType string

const (
	ResourceCSV   ResourceType = "csv"
	ResourceJSON  ResourceType = "json"
	ResourceTXT   ResourceType = "txt"
	ResourceZIP   ResourceType = "zip"
	ResourceOther ResourceType = "other"
)

var ResourceTypes = []ResourceType{ResourceCSV, ResourceJSON, ResourceTXT, ResourceZIP, ResourceOther}

func (rt ResourceType) Valid() bool {
	for _, known := range ResourceTypes {
		if rt == known {
			return true
		}
	}
	return false
}

// ContentType maps the resource type to a MIME type for downloads
func (rt ResourceType) ContentType() string {
	switch rt {
	case ResourceCSV:
		return "text/csv"
	case ResourceJSON:
		return "application/json"
	case ResourceTXT:
		return "text/plain"
	case ResourceZIP:
		return "application/zip"
	}
	return "application/octet-stream"
}

// ExperienceLevel is the self-declared experience from onboarding
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceSome         ExperienceLevel = "some_experience"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

var ExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceSome, ExperienceIntermediate, ExperienceAdvanced}

func (e ExperienceLevel) Valid() bool {
	for _, known := range ExperienceLevels {
		if e == known {
			return true
		}
	}
	return false
}

// ParseExperienceLevel validates a raw string as an ExperienceLevel
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	e := ExperienceLevel(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown experience level: %q", s)
	}
	return e, nil
}
