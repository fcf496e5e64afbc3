package observations

import (
	"math"
	"sort"
	"strings"

	"github.com/mbirkedal/cvlens/internal/analyzers"
	"github.com/mbirkedal/cvlens/internal/types"
)

// Strength signal keys
const (
	StrengthProgression     = "consistent_progression"
	StrengthMetricsPresent  = "metrics_present"
	StrengthRecentActivity  = "recent_activity"
	StrengthBalancedDensity = "balanced_density"
)

// Fixed illustrative confidences for strengths. Unlike analyzer signals
// these are not derived from the data; they only weight the phrasing.
const (
	progressionConfidence = 0.85
	metricsConfidence     = 0.85
	recentConfidence      = 0.80
	balancedConfidence    = 0.70
)

// seniorityMarkers order progression detection from junior to senior titles
var seniorityMarkers = []string{"senior", "lead", "principal", "staff", "head", "manager", "director", "chief"}

// recentActivityMonths bounds how old the newest role may be for the resume
// to still count as active.
const recentActivityMonths = 12

// DetectStrengths derives positive signals from the sections and the
// annotations the analyzers wrote. It must run after Generate, which fills
// the side table.
func DetectStrengths(sections []types.CVSection, ann analyzers.Annotations) []types.StrengthSignal {
	var out []types.StrengthSignal

	if s, ok := detectProgression(sections); ok {
		out = append(out, s)
	}
	if s, ok := detectMetricsPresent(sections, ann); ok {
		out = append(out, s)
	}
	if s, ok := detectRecentActivity(sections, ann); ok {
		out = append(out, s)
	}
	if s, ok := detectBalancedDensity(sections, ann); ok {
		out = append(out, s)
	}
	return out
}

// detectProgression looks for a seniority marker in a chronologically later
// title that an earlier title lacked.
func detectProgression(sections []types.CVSection) (types.StrengthSignal, bool) {
	var jobs []types.CVSection
	for _, sec := range sections {
		if sec.Type == types.SectionJob && sec.StartDate != nil {
			jobs = append(jobs, sec)
		}
	}
	if len(jobs) < 2 {
		return types.StrengthSignal{}, false
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].StartDate.Before(*jobs[j].StartDate)
	})

	for i := 0; i < len(jobs)-1; i++ {
		earlier := strings.ToLower(jobs[i].Title)
		for j := i + 1; j < len(jobs); j++ {
			later := strings.ToLower(jobs[j].Title)
			for _, marker := range seniorityMarkers {
				if strings.Contains(later, marker) && !strings.Contains(earlier, marker) {
					return types.StrengthSignal{
						Signal:     StrengthProgression,
						Confidence: progressionConfidence,
						Context: map[string]any{
							"from_title": jobs[i].Title,
							"to_title":   jobs[j].Title,
							"marker":     marker,
						},
					}, true
				}
			}
		}
	}
	return types.StrengthSignal{}, false
}

// detectMetricsPresent fires when at least two sections quantify their work
func detectMetricsPresent(sections []types.CVSection, ann analyzers.Annotations) (types.StrengthSignal, bool) {
	count := 0
	for _, sec := range sections {
		if record, ok := ann.Lookup(sec.ID); ok && record.HasCompleteness && record.Completeness.HasMetrics {
			count++
		}
	}
	if count < 2 {
		return types.StrengthSignal{}, false
	}
	return types.StrengthSignal{
		Signal:     StrengthMetricsPresent,
		Confidence: metricsConfidence,
		Context:    map[string]any{"sections_with_metrics": count},
	}, true
}

// detectRecentActivity fires when any job ended within the last year (or is
// still ongoing, recency 0).
func detectRecentActivity(sections []types.CVSection, ann analyzers.Annotations) (types.StrengthSignal, bool) {
	for _, sec := range sections {
		if sec.Type != types.SectionJob {
			continue
		}
		if record, ok := ann.Lookup(sec.ID); ok && record.HasRecency && record.RecencyScore < recentActivityMonths {
			return types.StrengthSignal{
				Signal:     StrengthRecentActivity,
				Confidence: recentConfidence,
				Context: map[string]any{
					"section_title":    sec.Title,
					"months_since_end": record.RecencyScore,
				},
			}, true
		}
	}
	return types.StrengthSignal{}, false
}

// detectBalancedDensity fires when the documented density across roles is
// mid-range and consistent (low variance), suggesting even coverage.
func detectBalancedDensity(sections []types.CVSection, ann analyzers.Annotations) (types.StrengthSignal, bool) {
	var scores []float64
	for _, sec := range sections {
		if record, ok := ann.Lookup(sec.ID); ok && record.HasDensity {
			scores = append(scores, record.DensityScore)
		}
	}
	if len(scores) < 2 {
		return types.StrengthSignal{}, false
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))
	stddev := math.Sqrt(variance)

	cfg := analyzers.DefaultConfig()
	midRange := mean >= cfg.SparseWordsPerMonth && mean <= cfg.DenseWordsPerMonth
	lowVariance := mean > 0 && stddev/mean < 0.5

	if !midRange || !lowVariance {
		return types.StrengthSignal{}, false
	}
	return types.StrengthSignal{
		Signal:     StrengthBalancedDensity,
		Confidence: balancedConfidence,
		Context: map[string]any{
			"mean_words_per_month": mean,
			"stddev":               stddev,
		},
	}, true
}
