package analyzers

import (
	"sort"

	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/types"
)

// AnalyzeTemporal classifies how stale each role is and scans for
// unexplained gaps between consecutive jobs.
func AnalyzeTemporal(sections []types.CVSection, ann Annotations, cfg Config, clock dates.Clock) []types.RawObservation {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	now := clock.Now()

	var out []types.RawObservation

	for _, sec := range sections {
		if !analyzable(sec) {
			continue
		}

		// No end date means the role is ongoing.
		monthsSinceEnd := 0
		if sec.EndDate != nil && sec.EndDate.Before(now) {
			monthsSinceEnd = dates.MonthsBetween(*sec.EndDate, now)
		}

		record := ann.For(sec.ID)
		record.RecencyScore = monthsSinceEnd
		record.HasRecency = true

		obs := types.RawObservation{
			SectionID: sec.ID,
			Type:      types.ObservationTemporal,
			Context: map[string]any{
				"section_title":    sec.Title,
				"months_since_end": monthsSinceEnd,
				"word_count":       sec.WordCount,
			},
		}

		switch {
		case monthsSinceEnd > cfg.OutdatedMonths:
			raw := cfg.OutdatedBase + float64(monthsSinceEnd-cfg.OutdatedMonths)*cfg.OutdatedSlope
			obs.Signal = SignalOutdated
			obs.Confidence = cfg.damp(cfg.cap(raw), sec.ParseConfidence)
		case monthsSinceEnd <= cfg.RecentMonths && sec.WordCount < cfg.RecentThinWords:
			obs.Signal = SignalRecentButThin
			obs.Confidence = cfg.damp(cfg.RecentThinConf, sec.ParseConfidence)
		default:
			obs.Signal = SignalCurrentAndHealthy
			obs.Confidence = cfg.damp(cfg.OutdatedBase, sec.ParseConfidence)
		}

		out = append(out, obs)
	}

	out = append(out, detectGaps(sections, cfg)...)
	return out
}

// detectGaps sorts dated jobs by end date descending and flags spans between
// one job's end and the next job's start that exceed the warning threshold.
func detectGaps(sections []types.CVSection, cfg Config) []types.RawObservation {
	var jobs []types.CVSection
	for _, sec := range sections {
		if sec.Type == types.SectionJob && sec.StartDate != nil && sec.EndDate != nil {
			jobs = append(jobs, sec)
		}
	}
	if len(jobs) < 2 {
		return nil
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].EndDate.After(*jobs[j].EndDate)
	})

	var out []types.RawObservation
	for i := 0; i < len(jobs)-1; i++ {
		later, earlier := jobs[i], jobs[i+1]
		if !earlier.EndDate.Before(*later.StartDate) {
			continue // overlapping or back-to-back
		}
		gap := dates.MonthsBetween(*earlier.EndDate, *later.StartDate)
		if gap <= cfg.GapWarningMonths {
			continue
		}
		raw := cfg.GapBase + float64(gap-cfg.GapWarningMonths)*cfg.GapSlope
		out = append(out, types.RawObservation{
			SectionID:  later.ID,
			Type:       types.ObservationTemporal,
			Signal:     SignalLargeGap,
			Confidence: cfg.cap(raw),
			Context: map[string]any{
				"section_title":  later.Title,
				"previous_title": earlier.Title,
				"gap_months":     gap,
			},
		})
	}
	return out
}
