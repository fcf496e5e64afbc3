package segmenter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/llm"
	"github.com/mbirkedal/cvlens/internal/prompts"
	"github.com/mbirkedal/cvlens/internal/schemas"
	"github.com/mbirkedal/cvlens/internal/types"
)

// llmSection mirrors the JSON contract the segmentation prompt demands
type llmSection struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Content      string `json:"content"`
}

// LLMSegmenter is the alternate strategy for low-structure documents: ask a
// language model to return the section list as strict JSON.
type LLMSegmenter struct {
	cfg    Config
	clock  dates.Clock
	client llm.Client
}

// NewLLMSegmenter creates the LLM-assisted strategy around a client
func NewLLMSegmenter(cfg Config, clock dates.Clock, client llm.Client) *LLMSegmenter {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &LLMSegmenter{cfg: cfg, clock: clock, client: client}
}

// Segment asks the model for a JSON section list, salvaging partial output
// and retrying transient failures. It always returns a usable Result: total
// failure degrades to a single catch-all section wrapping the raw text.
func (l *LLMSegmenter) Segment(ctx context.Context, rawText string) *Result {
	capped := rawText
	if len(capped) > l.cfg.LLMInputCap {
		capped = capped[:l.cfg.LLMInputCap]
	}
	prompt := prompts.Format(prompts.MustGet("segmentation.json", "segment-cv"),
		map[string]string{"RawText": capped})

	var warnings []string
	attempts := 1 + l.cfg.MaxRetries
	rateLimited := false

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			// Retries are sequential with a fixed pause; rate-limit
			// rejections get the longer one.
			delay := l.cfg.RetryDelay
			if rateLimited {
				delay = l.cfg.RateLimitDelay
			}
			l.cfg.Sleep(delay)
		}

		response, err := l.client.GenerateJSON(ctx, prompt, llm.TierStandard)
		if err != nil {
			rateLimited = llm.IsRateLimitError(err)
			if rateLimited {
				warnings = append(warnings, fmt.Sprintf("segmentation attempt %d hit a rate limit", attempt))
			} else {
				warnings = append(warnings, fmt.Sprintf("segmentation attempt %d failed: %v", attempt, err))
			}
			continue
		}
		rateLimited = false

		raw, salvaged, err := decodeSections(response)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("segmentation attempt %d returned unusable JSON: %v", attempt, err))
			continue
		}
		if len(raw) == 0 {
			warnings = append(warnings, fmt.Sprintf("segmentation attempt %d returned no sections", attempt))
			continue
		}
		if salvaged {
			warnings = append(warnings, fmt.Sprintf("recovered %d complete sections from a partial response", len(raw)))
		}

		sections := l.convert(raw, salvaged)
		assignSectionIDs(sections)
		seg := New(l.cfg, l.clock)
		return &Result{
			Sections:          sections,
			OverallConfidence: seg.overallConfidence(rawText, sections),
			Warnings:          warnings,
		}
	}

	log.Printf("[segmenter] LLM segmentation exhausted %d attempts, falling back", attempts)
	return FallbackResult(rawText, warnings)
}

// convert maps the wire sections onto CVSections. Clean responses grade
// high; salvaged ones medium.
func (l *LLMSegmenter) convert(raw []llmSection, salvaged bool) []types.CVSection {
	confidence := types.ConfidenceHigh
	if salvaged {
		confidence = types.ConfidenceMedium
	}

	sections := make([]types.CVSection, 0, len(raw))
	for _, rs := range raw {
		sec := types.CVSection{
			Type:            sectionType(rs.Type),
			Title:           strings.TrimSpace(rs.Title),
			Organization:    strings.TrimSpace(rs.Organization),
			Content:         strings.TrimSpace(rs.Content),
			ParseConfidence: confidence,
		}
		if sec.Title == "" {
			sec.Title = firstLine(sec.Content)
		}
		if t, ok := dates.Parse(rs.StartDate, l.clock); ok {
			sec.StartDate = &t
		}
		if t, ok := dates.Parse(rs.EndDate, l.clock); ok {
			sec.EndDate = &t
		}
		sec.Duration = durationFor(sec.StartDate, sec.EndDate)
		sec.WordCount = types.CountWords(sec.Content)
		if sec.Title == "" && sec.Content == "" {
			continue
		}
		sections = append(sections, sec)
	}
	return sections
}

func sectionType(raw string) types.SectionType {
	switch types.SectionType(strings.ToLower(strings.TrimSpace(raw))) {
	case types.SectionJob:
		return types.SectionJob
	case types.SectionEducation:
		return types.SectionEducation
	case types.SectionSkill:
		return types.SectionSkill
	case types.SectionProject:
		return types.SectionProject
	case types.SectionSummary:
		return types.SectionSummary
	default:
		return types.SectionOther
	}
}

// decodeSections parses the model's response. Conforming responses decode
// directly; malformed or truncated ones go through tolerant salvage, which
// keeps whatever complete array elements parsed before the break.
func decodeSections(response string) (sections []llmSection, salvaged bool, err error) {
	response = llm.CleanJSONBlock(response)

	if verr := schemas.ValidateSections(response); verr == nil {
		if uerr := json.Unmarshal([]byte(response), &sections); uerr == nil {
			return sections, false, nil
		}
	}

	sections = salvageSections(response)
	if len(sections) == 0 {
		return nil, false, fmt.Errorf("no complete section objects could be recovered")
	}
	return sections, true, nil
}

// salvageSections streams array elements off a possibly-truncated response
// and returns the ones that fully parsed before the truncation point.
func salvageSections(response string) []llmSection {
	start := strings.IndexByte(response, '[')
	if start < 0 {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(response[start:]))
	if _, err := dec.Token(); err != nil { // consume the opening bracket
		return nil
	}

	var sections []llmSection
	for dec.More() {
		var sec llmSection
		if err := dec.Decode(&sec); err != nil {
			break
		}
		if sec.Type == "" && sec.Title == "" && sec.Content == "" {
			continue
		}
		sections = append(sections, sec)
	}
	return sections
}
