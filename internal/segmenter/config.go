// Package segmenter partitions raw resume text into typed sections using
// header-pattern detection, pattern-based job inference, and an LLM-assisted
// fallback for low-structure documents.
package segmenter

import (
	"regexp"
	"time"

	"github.com/mbirkedal/cvlens/internal/types"
)

// Config holds every pattern table and tuning knob the segmenter uses.
// The tables are data, not code: they are expected to be tuned against real
// documents, so callers inject a Config rather than relying on literals.
type Config struct {
	// HeaderPatterns maps a section type to the regexes its header line may
	// match. Patterns are case-insensitive and anchored at line start.
	HeaderPatterns map[types.SectionType][]*regexp.Regexp

	// CompanyLinePatterns flag candidate employer/organization lines in
	// documents without explicit headers.
	CompanyLinePatterns []*regexp.Regexp

	// TitleLinePatterns flag candidate job-title lines.
	TitleLinePatterns []*regexp.Regexp

	// DateRangeRe extracts a start/end date pair from section text.
	DateRangeRe *regexp.Regexp

	// TitleDateLookahead is how many lines below a title candidate a date
	// range may appear for the title to count as a job heading.
	TitleDateLookahead int

	// MinBlockChars discards pattern-detected job blocks shorter than this
	// as noise.
	MinBlockChars int

	// LLMInputCap truncates raw text sent to the segmentation LLM.
	LLMInputCap int

	// MaxRetries is the number of additional attempts after the first
	// segmentation LLM call fails.
	MaxRetries int

	// RetryDelay is the fixed pause between retries; RateLimitDelay replaces
	// it when the failure was a rate-limit rejection.
	RetryDelay     time.Duration
	RateLimitDelay time.Duration

	// Sleep is injectable so retry pacing can be observed in tests.
	Sleep func(time.Duration)

	// Confidence ratio cutoffs: parsed-character share below LowRatio grades
	// the result low, below MediumRatio medium, otherwise high.
	LowRatio    float64
	MediumRatio float64
}

// DefaultConfig returns the tuned pattern tables and thresholds
func DefaultConfig() Config {
	return Config{
		HeaderPatterns: map[types.SectionType][]*regexp.Regexp{
			types.SectionJob: {
				regexp.MustCompile(`(?i)^(work\s+)?experiences?\b`),
				regexp.MustCompile(`(?i)^employment(\s+history)?\b`),
				regexp.MustCompile(`(?i)^work\s+history\b`),
				regexp.MustCompile(`(?i)^career(\s+history)?\b`),
				regexp.MustCompile(`(?i)^professional\s+(experience|background)\b`),
			},
			types.SectionEducation: {
				regexp.MustCompile(`(?i)^education(al)?(\s+background)?\b`),
				regexp.MustCompile(`(?i)^qualifications?\b`),
				regexp.MustCompile(`(?i)^certifications?\b`),
				regexp.MustCompile(`(?i)^academic\b`),
				regexp.MustCompile(`(?i)^courses?\b`),
			},
			types.SectionSkill: {
				regexp.MustCompile(`(?i)^(technical\s+|core\s+)?skills?\b`),
				regexp.MustCompile(`(?i)^competenc(y|ies)\b`),
				regexp.MustCompile(`(?i)^technologies\b`),
				regexp.MustCompile(`(?i)^tools?\s*(&|and)\s*technologies\b`),
				regexp.MustCompile(`(?i)^expertise\b`),
			},
			types.SectionProject: {
				regexp.MustCompile(`(?i)^projects?\b`),
				regexp.MustCompile(`(?i)^portfolio\b`),
				regexp.MustCompile(`(?i)^selected\s+work\b`),
				regexp.MustCompile(`(?i)^side\s+projects?\b`),
			},
			types.SectionSummary: {
				regexp.MustCompile(`(?i)^summary\b`),
				regexp.MustCompile(`(?i)^profile\b`),
				regexp.MustCompile(`(?i)^about(\s+me)?\b`),
				regexp.MustCompile(`(?i)^objective\b`),
				regexp.MustCompile(`(?i)^professional\s+summary\b`),
			},
		},
		CompanyLinePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(inc|incorporated|ltd|limited|llc|llp|gmbh|corp|corporation|co\.|plc|a/s|aps|ab|bv|sa|oy)\.?$`),
			regexp.MustCompile(`(?i)\b(university|college|hospital|foundation|institute|laborator(y|ies)|school)\b`),
			regexp.MustCompile(`(?i)\b(ministry|municipality|agency|council|department|commission|authority)\b`),
		},
		TitleLinePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(senior|junior|lead|principal|staff|chief|head\s+of|associate)\b`),
			regexp.MustCompile(`(?i)\b(engineer|developer|programmer|architect|designer|analyst|consultant|scientist)\b`),
			regexp.MustCompile(`(?i)\b(manager|director|officer|specialist|coordinator|administrator|intern|assistant)\b`),
		},
		DateRangeRe: regexp.MustCompile(
			`(?i)((?:[a-z]+\.?\s+)?\d{4}|\d{1,2}[/.]\d{4})\s*(?:-|–|—|to|til)\s*((?:[a-z]+\.?\s+)?\d{4}|\d{1,2}[/.]\d{4}|present|current|now|ongoing|today|nu|i\s?dag|heute)`),
		TitleDateLookahead: 3,
		MinBlockChars:      50,
		LLMInputCap:        30000,
		MaxRetries:         2,
		RetryDelay:         2 * time.Second,
		RateLimitDelay:     15 * time.Second,
		Sleep:              time.Sleep,
		LowRatio:           0.70,
		MediumRatio:        0.85,
	}
}
