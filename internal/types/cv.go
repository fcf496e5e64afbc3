// Package types provides type definitions for structured data used throughout the cvlens system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// SectionType classifies a contiguous span of resume text
type SectionType string

// Known section types
const (
	SectionJob       SectionType = "job"
	SectionEducation SectionType = "education"
	SectionSkill     SectionType = "skill"
	SectionProject   SectionType = "project"
	SectionSummary   SectionType = "summary"
	SectionOther     SectionType = "other"
)

// ParseConfidence grades how certain the segmenter was about a section's
// boundaries and type
type ParseConfidence string

// Parse confidence grades
const (
	ConfidenceHigh   ParseConfidence = "high"
	ConfidenceMedium ParseConfidence = "medium"
	ConfidenceLow    ParseConfidence = "low"
)

// CVSection represents a classified, contiguous slice of the original document
type CVSection struct {
	ID           string      `json:"id"`
	Type         SectionType `json:"type"`
	Title        string      `json:"title"`
	Organization string      `json:"organization,omitempty"`
	StartDate    *time.Time  `json:"start_date,omitempty"`
	EndDate      *time.Time  `json:"end_date,omitempty"`
	// Duration is whole months between StartDate and EndDate, floored to 1.
	// Zero means undefined (one of the dates is missing).
	Duration        int             `json:"duration_months,omitempty"`
	Content         string          `json:"content"`
	WordCount       int             `json:"word_count"`
	ParseConfidence ParseConfidence `json:"parse_confidence"`
}

// CountWords returns the whitespace-delimited token count of s
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// ObservationType names the analyzer family that produced a signal
type ObservationType string

// Observation types
const (
	ObservationDensity    ObservationType = "density"
	ObservationTemporal   ObservationType = "temporal"
	ObservationStructural ObservationType = "structural"
)

// RawObservation is the analyzer-generator boundary: a named signal about one
// section with a confidence score and a context bag for downstream phrasing
type RawObservation struct {
	SectionID  string          `json:"section_id"`
	Type       ObservationType `json:"type"`
	Signal     string          `json:"signal"`
	Confidence float64         `json:"confidence"`
	Context    map[string]any  `json:"context,omitempty"`
}

// ObservationStatus tracks the lifecycle of a user-facing observation
type ObservationStatus string

// Observation lifecycle states. An observation starts pending and only moves
// on an explicit user response; it never reverts.
const (
	StatusPending       ObservationStatus = "pending"
	StatusAwaitingInput ObservationStatus = "awaiting_input"
	StatusProcessing    ObservationStatus = "processing"
	StatusAccepted      ObservationStatus = "accepted"
	StatusDeclined      ObservationStatus = "declined"
	StatusLocked        ObservationStatus = "locked"
)

// ActionType describes what kind of edit an observation proposes
type ActionType string

// Observation action types
const (
	ActionRewrite    ActionType = "rewrite"
	ActionAddInfo    ActionType = "add_info"
	ActionGuidedEdit ActionType = "guided_edit"
)

// Observation is a signal promoted to user-facing status, carrying phrased
// text and an optional proposed edit
type Observation struct {
	ID               string            `json:"id"`
	SectionID        string            `json:"section_id"`
	Type             ObservationType   `json:"type"`
	Signal           string            `json:"signal"`
	Confidence       float64           `json:"confidence"`
	Message          string            `json:"message"`
	Proposal         string            `json:"proposal,omitempty"`
	RewrittenContent string            `json:"rewritten_content,omitempty"`
	InputPrompt      string            `json:"input_prompt,omitempty"`
	ActionType       ActionType        `json:"action_type"`
	Status           ObservationStatus `json:"status"`
	Context          map[string]any    `json:"context,omitempty"`
}

// IsTerminal reports whether the status is a final user response
func (s ObservationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusLocked
}

// CanTransitionTo reports whether a status change is legal. Terminal states
// never revert.
func (s ObservationStatus) CanTransitionTo(next ObservationStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusAccepted, StatusDeclined, StatusLocked, StatusAwaitingInput, StatusProcessing:
		return true
	default:
		return false
	}
}

// StrengthSignal is a positive finding about the document as a whole,
// consumed only by the phrasing boundary
type StrengthSignal struct {
	Signal     string         `json:"signal"`
	Confidence float64        `json:"confidence"`
	Context    map[string]any `json:"context,omitempty"`
}

// CV is the aggregate root for one uploaded document
type CV struct {
	ID           string        `json:"id"`
	Filename     string        `json:"filename"`
	UploadedAt   time.Time     `json:"uploaded_at"`
	RawText      string        `json:"-"`
	Sections     []CVSection   `json:"sections"`
	Observations []Observation `json:"observations"`
	Strengths    []string      `json:"strengths"`
	Warnings     []string      `json:"warnings"`
}

// FindObservation returns the observation with the given id, or nil
func (cv *CV) FindObservation(id string) *Observation {
	for i := range cv.Observations {
		if cv.Observations[i].ID == id {
			return &cv.Observations[i]
		}
	}
	return nil
}

// FindSection returns the section with the given id, or nil
func (cv *CV) FindSection(id string) *CVSection {
	for i := range cv.Sections {
		if cv.Sections[i].ID == id {
			return &cv.Sections[i]
		}
	}
	return nil
}
