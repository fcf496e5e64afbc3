package analyzers

import (
	"github.com/mbirkedal/cvlens/internal/types"
)

// AnalyzeDensity classifies how thoroughly each role is documented relative
// to its tenure. Sections without a computable duration are skipped, never
// an error.
func AnalyzeDensity(sections []types.CVSection, ann Annotations, cfg Config) []types.RawObservation {
	var out []types.RawObservation

	for _, sec := range sections {
		if !analyzable(sec) || sec.Duration <= 0 {
			continue
		}

		wordsPerMonth := float64(sec.WordCount) / float64(sec.Duration)
		record := ann.For(sec.ID)
		record.DensityScore = wordsPerMonth
		record.HasDensity = true

		obs := types.RawObservation{
			SectionID: sec.ID,
			Type:      types.ObservationDensity,
			Context: map[string]any{
				"section_title":   sec.Title,
				"word_count":      sec.WordCount,
				"duration_months": sec.Duration,
				"words_per_month": wordsPerMonth,
			},
		}

		switch {
		case wordsPerMonth < cfg.SparseWordsPerMonth:
			// The further below the threshold, the more confident the call.
			raw := cfg.SparseBase + (cfg.SparseWordsPerMonth-wordsPerMonth)*cfg.SparseSlope
			obs.Signal = SignalSparseDensity
			obs.Confidence = cfg.damp(cfg.cap(raw), sec.ParseConfidence)
		case wordsPerMonth > cfg.DenseWordsPerMonth:
			raw := cfg.DenseBase + (wordsPerMonth-cfg.DenseWordsPerMonth)*cfg.DenseSlope
			obs.Signal = SignalDenseButShallow
			obs.Confidence = cfg.damp(cfg.cap(raw), sec.ParseConfidence)
		default:
			obs.Signal = SignalHealthyDensity
			obs.Confidence = cfg.damp(cfg.SparseBase, sec.ParseConfidence)
		}

		out = append(out, obs)
	}
	return out
}
