package phrasing

import (
	"fmt"

	"github.com/mbirkedal/cvlens/internal/analyzers"
	"github.com/mbirkedal/cvlens/internal/observations"
	"github.com/mbirkedal/cvlens/internal/types"
)

// actionFor maps a signal to the kind of edit it proposes and, for add_info
// actions, the question the UI asks the user.
func actionFor(signal string) (types.ActionType, string) {
	switch signal {
	case analyzers.SignalSparseDensity:
		return types.ActionAddInfo, "What did you work on in this role? A couple of concrete tasks or projects is enough."
	case analyzers.SignalDenseButShallow:
		return types.ActionRewrite, ""
	case analyzers.SignalOutdated:
		return types.ActionGuidedEdit, ""
	case analyzers.SignalRecentButThin:
		return types.ActionAddInfo, "Can you say a bit more about what you did here recently?"
	case analyzers.SignalLargeGap:
		return types.ActionAddInfo, "What were you doing between these two roles? A short note is fine."
	case analyzers.SignalMissingMetrics:
		return types.ActionAddInfo, "Can you quantify anything here? Numbers, percentages or sizes all work."
	case analyzers.SignalMissingOutcomes:
		return types.ActionRewrite, ""
	case analyzers.SignalMissingTools:
		return types.ActionAddInfo, "Which tools or technologies did you use in this role?"
	case analyzers.SignalMissingTeamSize:
		return types.ActionAddInfo, "How large was the team you led?"
	default:
		return types.ActionGuidedEdit, ""
	}
}

// fallbackMessage renders a deterministic message when the LLM is
// unavailable. One template per signal, filled from the context bag.
func fallbackMessage(raw types.RawObservation) string {
	title, _ := raw.Context["section_title"].(string)
	if title == "" {
		title = "this section"
	}

	switch raw.Signal {
	case analyzers.SignalSparseDensity:
		return fmt.Sprintf("%s covers a long period but says very little about it. Adding a few concrete tasks or achievements would help.", title)
	case analyzers.SignalDenseButShallow:
		return fmt.Sprintf("%s packs a lot of text into a short period. Tightening it to the most important points would make it easier to read.", title)
	case analyzers.SignalOutdated:
		return fmt.Sprintf("%s ended a while ago. Consider shortening it to make room for more recent work.", title)
	case analyzers.SignalRecentButThin:
		return fmt.Sprintf("%s is recent but quite brief. Recent roles usually deserve the most detail.", title)
	case analyzers.SignalLargeGap:
		prev, _ := raw.Context["previous_title"].(string)
		if prev != "" {
			return fmt.Sprintf("There is a gap between %s and %s. A short note on what you did in between avoids questions.", prev, title)
		}
		return fmt.Sprintf("There is a gap before %s. A short note on what you did in between avoids questions.", title)
	case analyzers.SignalMissingMetrics:
		return fmt.Sprintf("%s has no numbers. Quantifying even one result makes it much stronger.", title)
	case analyzers.SignalMissingOutcomes:
		return fmt.Sprintf("%s describes duties but not results. Leading with what you achieved reads better.", title)
	case analyzers.SignalMissingTools:
		return fmt.Sprintf("%s does not name the tools or technologies you used.", title)
	case analyzers.SignalMissingTeamSize:
		return fmt.Sprintf("%s mentions leading but not how many people. Team size gives the reader scale.", title)
	default:
		return fmt.Sprintf("%s could be improved.", title)
	}
}

// fallbackStrength renders a deterministic sentence per strength signal
func fallbackStrength(strength types.StrengthSignal) string {
	switch strength.Signal {
	case observations.StrengthProgression:
		to, _ := strength.Context["to_title"].(string)
		if to != "" {
			return fmt.Sprintf("Your career shows clear progression, up to %s.", to)
		}
		return "Your career shows clear progression across roles."
	case observations.StrengthMetricsPresent:
		return "You back up your work with concrete numbers, which reads very well."
	case observations.StrengthRecentActivity:
		return "Your most recent experience is current, which recruiters look for."
	case observations.StrengthBalancedDensity:
		return "Your roles are described with consistent, readable detail throughout."
	default:
		return "This is a solid part of your resume."
	}
}
