// Package observations merges analyzer signals into the bounded, ranked
// observation list surfaced to users, and derives positive strength signals
// from the same section data.
package observations

import (
	"sort"

	"github.com/mbirkedal/cvlens/internal/analyzers"
	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/types"
)

// Generator runs the analyzers and shapes their output
type Generator struct {
	cfg   analyzers.Config
	clock dates.Clock
}

// NewGenerator creates a Generator with the given threshold table and clock
func NewGenerator(cfg analyzers.Config, clock dates.Clock) *Generator {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &Generator{cfg: cfg, clock: clock}
}

// Generate runs all analyzers over the sections, drops suppressed and
// under-threshold signals, and returns at most MaxObservations observations
// ranked by confidence. Ties keep their original emission order, so output
// is deterministic for identical input under a pinned clock. The annotation
// side table is filled as a side effect and must be passed on to strength
// detection.
func (g *Generator) Generate(sections []types.CVSection, ann analyzers.Annotations) []types.RawObservation {
	// Fixed analyzer order: structural completeness and recency scores must
	// exist before strength detection reads them.
	var all []types.RawObservation
	all = append(all, analyzers.AnalyzeDensity(sections, ann, g.cfg)...)
	all = append(all, analyzers.AnalyzeTemporal(sections, ann, g.cfg, g.clock)...)
	all = append(all, analyzers.AnalyzeStructural(sections, ann, g.cfg)...)

	kept := make([]types.RawObservation, 0, len(all))
	for _, obs := range all {
		if analyzers.Suppressed(obs.Signal) {
			continue
		}
		if obs.Confidence < g.cfg.MinConfidenceToShow {
			continue
		}
		kept = append(kept, obs)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	if len(kept) > g.cfg.MaxObservations {
		kept = kept[:g.cfg.MaxObservations]
	}
	return kept
}
