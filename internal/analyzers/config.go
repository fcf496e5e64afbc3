// Package analyzers computes quality signals over segmented CV sections:
// documentation density, temporal staleness and gaps, and structural
// completeness.
package analyzers

import (
	"regexp"

	"github.com/mbirkedal/cvlens/internal/types"
)

// Signal keys emitted by the analyzers. The healthy variants are suppressed
// by the observation generator and never surface to users.
const (
	SignalSparseDensity     = "sparse_density"
	SignalDenseButShallow   = "dense_but_shallow"
	SignalHealthyDensity    = "healthy_density"
	SignalOutdated          = "outdated_experience"
	SignalRecentButThin     = "recent_but_thin"
	SignalCurrentAndHealthy = "current_and_healthy"
	SignalLargeGap          = "large_gap"
	SignalMissingMetrics    = "missing_metrics"
	SignalMissingOutcomes   = "missing_outcomes"
	SignalMissingTools      = "missing_tools"
	SignalMissingTeamSize   = "missing_team_size"
	SignalWellStructured    = "well_structured"
)

// Suppressed reports whether a signal is a healthy marker that must not be
// promoted to an observation.
func Suppressed(signal string) bool {
	switch signal {
	case SignalHealthyDensity, SignalCurrentAndHealthy, SignalWellStructured:
		return true
	default:
		return false
	}
}

// Config is the single table of analyzer thresholds and patterns. The
// scaling constants are empirical tuning values calibrated against real
// documents, so everything lives here rather than inline.
type Config struct {
	// Density: words per month of tenure.
	SparseWordsPerMonth float64
	DenseWordsPerMonth  float64
	SparseBase          float64
	SparseSlope         float64
	DenseBase           float64
	DenseSlope          float64

	// Temporal: months.
	OutdatedMonths  int
	OutdatedBase    float64
	OutdatedSlope   float64
	RecentMonths    int
	RecentThinWords int
	RecentThinConf  float64
	GapWarningMonths int
	GapBase          float64
	GapSlope         float64

	// Structural: indicator patterns and per-parse-confidence base values.
	MetricsRe      *regexp.Regexp
	OutcomesRe     *regexp.Regexp
	ToolsRe        *regexp.Regexp
	TeamSizeRe     *regexp.Regexp
	StructuralBase map[types.ParseConfidence]float64
	ToolsScale     float64

	// Shared.
	ConfidenceCap       float64
	Damping             map[types.ParseConfidence]float64
	MinConfidenceToShow float64
	MaxObservations     int
}

// DefaultConfig returns the tuned analyzer thresholds
func DefaultConfig() Config {
	return Config{
		SparseWordsPerMonth: 15,
		DenseWordsPerMonth:  120,
		SparseBase:          0.7,
		SparseSlope:         0.05,
		DenseBase:           0.7,
		DenseSlope:          0.005,

		OutdatedMonths:   36,
		OutdatedBase:     0.7,
		OutdatedSlope:    0.01,
		RecentMonths:     12,
		RecentThinWords:  50,
		RecentThinConf:   0.75,
		GapWarningMonths: 6,
		GapBase:          0.6,
		GapSlope:         0.05,

		MetricsRe: regexp.MustCompile(
			`(?i)(\d+([.,]\d+)?\s*%)|([$€£]\s?\d)|(\b\d+\s*(users|customers|clients|people|engineers|developers|requests|transactions|millions?|thousands?))|(\b\d+[kKmM]\b)|(\b\d+x\b)`),
		OutcomesRe: regexp.MustCompile(
			`(?i)\b(improved|reduced|increased|achieved|delivered|launched|saved|grew|built|shipped|optimi[sz]ed|accelerated|streamlined|cut|doubled|tripled)\b`),
		ToolsRe: regexp.MustCompile(
			`(?i)\b(python|java|golang|javascript|typescript|c\+\+|c#|react|vue|angular|node(\.js)?|sql|postgres(ql)?|mysql|mongodb|aws|azure|gcp|docker|kubernetes|terraform|kafka|redis|spark|tableau|excel|salesforce|sap|figma|jira)\b`),
		TeamSizeRe: regexp.MustCompile(
			`(?i)\b(team\s+of\s+\d+|managed\s+\d+|led\s+\d+|\d+\s+direct\s+reports|\d+\s+engineers)\b`),
		StructuralBase: map[types.ParseConfidence]float64{
			types.ConfidenceHigh:   0.80,
			types.ConfidenceMedium: 0.65,
			types.ConfidenceLow:    0.50,
		},
		ToolsScale: 0.7,

		ConfidenceCap: 0.95,
		Damping: map[types.ParseConfidence]float64{
			types.ConfidenceHigh:   1.0,
			types.ConfidenceMedium: 0.8,
			types.ConfidenceLow:    0.6,
		},
		MinConfidenceToShow: 0.55,
		MaxObservations:     8,
	}
}

// cap clamps a confidence to the configured ceiling
func (c Config) cap(confidence float64) float64 {
	if confidence > c.ConfidenceCap {
		return c.ConfidenceCap
	}
	return confidence
}

// damp scales a confidence down to reflect segmentation uncertainty
func (c Config) damp(confidence float64, parse types.ParseConfidence) float64 {
	if factor, ok := c.Damping[parse]; ok {
		return confidence * factor
	}
	return confidence
}

// analyzable reports whether density/temporal analyzers consider the section
func analyzable(sec types.CVSection) bool {
	return sec.Type == types.SectionJob || sec.Type == types.SectionProject
}
