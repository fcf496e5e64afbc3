package analyzers

import (
	"strings"

	"github.com/mbirkedal/cvlens/internal/types"
)

// AnalyzeStructural tests each role description for the indicators of a
// well-written entry (metrics, outcome verbs, named tools, team size) and
// records the completeness profile in the side table.
func AnalyzeStructural(sections []types.CVSection, ann Annotations, cfg Config) []types.RawObservation {
	var out []types.RawObservation

	for _, sec := range sections {
		if !analyzable(sec) || strings.TrimSpace(sec.Content) == "" {
			continue
		}

		completeness := Completeness{
			HasMetrics:  cfg.MetricsRe.MatchString(sec.Content),
			HasOutcomes: cfg.OutcomesRe.MatchString(sec.Content),
			HasTools:    cfg.ToolsRe.MatchString(sec.Content),
			HasTeamSize: cfg.TeamSizeRe.MatchString(sec.Content),
		}
		record := ann.For(sec.ID)
		record.Completeness = completeness
		record.HasCompleteness = true

		base := cfg.StructuralBase[sec.ParseConfidence]
		context := func() map[string]any {
			return map[string]any{
				"section_title": sec.Title,
				"has_metrics":   completeness.HasMetrics,
				"has_outcomes":  completeness.HasOutcomes,
				"has_tools":     completeness.HasTools,
				"has_team_size": completeness.HasTeamSize,
			}
		}

		fired := false
		if !completeness.HasMetrics {
			out = append(out, types.RawObservation{
				SectionID:  sec.ID,
				Type:       types.ObservationStructural,
				Signal:     SignalMissingMetrics,
				Confidence: base,
				Context:    context(),
			})
			fired = true
		}
		if !completeness.HasOutcomes {
			out = append(out, types.RawObservation{
				SectionID:  sec.ID,
				Type:       types.ObservationStructural,
				Signal:     SignalMissingOutcomes,
				Confidence: base,
				Context:    context(),
			})
			fired = true
		}
		if !completeness.HasTools {
			// Tools are nice-to-have; the signal carries less weight.
			out = append(out, types.RawObservation{
				SectionID:  sec.ID,
				Type:       types.ObservationStructural,
				Signal:     SignalMissingTools,
				Confidence: base * cfg.ToolsScale,
				Context:    context(),
			})
			fired = true
		}
		if !completeness.HasTeamSize && mentionsLeadership(sec.Content) {
			out = append(out, types.RawObservation{
				SectionID:  sec.ID,
				Type:       types.ObservationStructural,
				Signal:     SignalMissingTeamSize,
				Confidence: base * cfg.ToolsScale,
				Context:    context(),
			})
			fired = true
		}

		if completeness.HasMetrics && completeness.HasOutcomes && !fired {
			out = append(out, types.RawObservation{
				SectionID:  sec.ID,
				Type:       types.ObservationStructural,
				Signal:     SignalWellStructured,
				Confidence: base,
				Context:    context(),
			})
		}
	}
	return out
}

// mentionsLeadership restricts the team-size nudge to sections that talk
// about leading.
func mentionsLeadership(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "lead") || strings.Contains(lower, "led ")
}
