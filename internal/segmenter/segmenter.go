package segmenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/types"
)

// Result is the outcome of segmenting one document. Warnings accompany every
// degraded step so callers can distinguish a clean parse from a salvaged one.
type Result struct {
	Sections          []types.CVSection     `json:"sections"`
	OverallConfidence types.ParseConfidence `json:"overall_confidence"`
	Warnings          []string              `json:"warnings"`
}

// Segmenter applies the heuristic strategies (headers, then job-pattern
// augmentation) to raw resume text.
type Segmenter struct {
	cfg   Config
	clock dates.Clock
}

// New creates a Segmenter with the given pattern configuration and clock
func New(cfg Config, clock dates.Clock) *Segmenter {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &Segmenter{cfg: cfg, clock: clock}
}

// Segment partitions raw text into typed sections. It always returns a
// non-nil Result; degradation is reported through Warnings, never an error.
func (s *Segmenter) Segment(text string) *Result {
	sections, warnings := s.segmentByHeaders(text)

	// The pattern detector only runs when the header pass found no jobs,
	// which signals a document without explicit headers.
	if countType(sections, types.SectionJob) == 0 {
		jobs, jobWarnings := s.detectJobPatterns(text)
		if len(jobs) > 0 {
			sections = Merge(sections, jobs, ContentOverlaps)
			warnings = append(warnings, jobWarnings...)
		}
	}

	assignSectionIDs(sections)

	return &Result{
		Sections:          sections,
		OverallConfidence: s.overallConfidence(text, sections),
		Warnings:          warnings,
	}
}

// Usable reports whether a result is good enough to analyze. Policy is
// lenient: only an empty result, or a low-confidence result with fewer than
// two sections, counts as a parse failure.
func Usable(r *Result) bool {
	if r == nil || len(r.Sections) == 0 {
		return false
	}
	if r.OverallConfidence == types.ConfidenceLow && len(r.Sections) < 2 {
		return false
	}
	return true
}

// FallbackResult wraps the entire raw text in a single low-confidence
// section. It is the terminal degradation tier when every strategy fails.
func FallbackResult(text string, warnings []string) *Result {
	content := strings.TrimSpace(text)
	section := types.CVSection{
		Type:            types.SectionOther,
		Title:           firstLine(content),
		Content:         content,
		WordCount:       types.CountWords(content),
		ParseConfidence: types.ConfidenceLow,
	}
	sections := []types.CVSection{section}
	assignSectionIDs(sections)
	return &Result{
		Sections:          sections,
		OverallConfidence: types.ConfidenceLow,
		Warnings:          append(warnings, "segmentation fell back to a single unclassified section"),
	}
}

// overallConfidence grades the result by how much of the raw text the parsed
// sections account for.
func (s *Segmenter) overallConfidence(text string, sections []types.CVSection) types.ParseConfidence {
	total := len(strings.TrimSpace(text))
	if total == 0 {
		return types.ConfidenceLow
	}
	parsed := 0
	for _, sec := range sections {
		parsed += len(sec.Title) + len(sec.Content)
	}
	ratio := float64(parsed) / float64(total)
	switch {
	case ratio < s.cfg.LowRatio:
		return types.ConfidenceLow
	case ratio < s.cfg.MediumRatio:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceHigh
	}
}

// extractDateRange pulls a start/end pair out of free text using the
// configured range regex. Either side may be nil when unparseable.
func (s *Segmenter) extractDateRange(text string) (start, end *time.Time) {
	m := s.cfg.DateRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	if t, ok := dates.Parse(m[1], s.clock); ok {
		start = &t
	}
	if t, ok := dates.Parse(m[2], s.clock); ok {
		end = &t
	}
	return start, end
}

// durationFor derives whole months of tenure, or 0 when either end is missing
func durationFor(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	return dates.MonthsBetween(*start, *end)
}

func assignSectionIDs(sections []types.CVSection) {
	for i := range sections {
		sections[i].ID = fmt.Sprintf("sec_%03d", i+1)
	}
}

func countType(sections []types.CVSection, typ types.SectionType) int {
	n := 0
	for _, sec := range sections {
		if sec.Type == typ {
			n++
		}
	}
	return n
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}
