package segmenter

import (
	"strings"

	"github.com/mbirkedal/cvlens/internal/types"
)

// OverlapFunc decides whether two sections cover the same span of the
// original document. It is injectable so the merge policy can be tested
// independently of the strategies.
type OverlapFunc func(a, b types.CVSection) bool

// ContentOverlaps is the default overlap test: one section's content contains
// the other's title, or vice versa.
func ContentOverlaps(a, b types.CVSection) bool {
	return containsTitle(a.Content, b.Title) || containsTitle(b.Content, a.Title)
}

func containsTitle(content, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" || content == "" {
		return false
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(title))
}

// Merge reconciles the header strategy's output with the pattern detector's.
// A typed job section from the detector replaces an overlapping unclassified
// section; detector sections with no overlap are appended.
func Merge(base, detected []types.CVSection, overlaps OverlapFunc) []types.CVSection {
	merged := make([]types.CVSection, len(base))
	copy(merged, base)

	for _, job := range detected {
		replaced := false
		for i := range merged {
			if merged[i].Type == types.SectionOther && overlaps(merged[i], job) {
				merged[i] = job
				replaced = true
				break
			}
		}
		if !replaced && !overlapsAny(merged, job, overlaps) {
			merged = append(merged, job)
		}
	}
	return merged
}

func overlapsAny(sections []types.CVSection, candidate types.CVSection, overlaps OverlapFunc) bool {
	for _, sec := range sections {
		if overlaps(sec, candidate) {
			return true
		}
	}
	return false
}
