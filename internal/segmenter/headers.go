package segmenter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mbirkedal/cvlens/internal/types"
)

// openSection accumulates chunks between one matched header and the next
type openSection struct {
	typ    types.SectionType
	header string
	body   []string
}

// segmentByHeaders is the primary strategy: split the text into chunks on
// blank lines and ALL-CAPS header lines, classify each chunk by testing its
// first line against the header table, and accumulate unmatched chunks into
// the currently open section.
func (s *Segmenter) segmentByHeaders(text string) ([]types.CVSection, []string) {
	chunks := splitChunks(text)

	var sections []types.CVSection
	var warnings []string
	var open *openSection

	emit := func() {
		if open == nil {
			return
		}
		sec, warns := s.buildSection(open)
		if sec != nil {
			sections = append(sections, *sec)
		}
		warnings = append(warnings, warns...)
		open = nil
	}

	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		typ, matched := s.matchHeader(chunk[0])
		if matched {
			emit()
			open = &openSection{typ: typ, header: strings.TrimSpace(chunk[0]), body: chunk[1:]}
			continue
		}
		if open == nil {
			// Leading content before any recognizable header.
			open = &openSection{typ: types.SectionOther, header: strings.TrimSpace(chunk[0]), body: chunk[1:]}
			continue
		}
		open.body = append(open.body, chunk...)
	}
	emit()

	return sections, warnings
}

// matchHeader tests a line against the per-type header table
func (s *Segmenter) matchHeader(line string) (types.SectionType, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	// Fixed iteration order keeps classification deterministic when tables
	// could overlap.
	for _, typ := range []types.SectionType{
		types.SectionJob, types.SectionEducation, types.SectionSkill,
		types.SectionProject, types.SectionSummary,
	} {
		for _, re := range s.cfg.HeaderPatterns[typ] {
			if re.MatchString(trimmed) {
				return typ, true
			}
		}
	}
	return "", false
}

// buildSection converts an accumulated chunk into a CVSection. Job sections
// get role-line extraction (title, organization, and date lines are pulled
// out of the body); other types keep the header as title and the body as
// content.
func (s *Segmenter) buildSection(open *openSection) (*types.CVSection, []string) {
	var warnings []string

	wholeText := open.header + "\n" + strings.Join(open.body, "\n")
	start, end := s.extractDateRange(wholeText)

	sec := types.CVSection{
		Type:      open.typ,
		Title:     open.header,
		StartDate: start,
		EndDate:   end,
		Duration:  durationFor(start, end),
	}

	if open.typ == types.SectionJob {
		s.extractJobLines(&sec, open.body)
	} else {
		sec.Content = strings.TrimSpace(strings.Join(open.body, "\n"))
		if sec.Title == "" {
			sec.Title = firstLine(sec.Content)
		}
	}
	sec.WordCount = types.CountWords(sec.Content)

	switch {
	case open.typ == types.SectionOther:
		sec.ParseConfidence = types.ConfidenceLow
		warnings = append(warnings, fmt.Sprintf("unclassified section %q kept at low confidence", sec.Title))
	case open.typ == types.SectionJob && start == nil:
		sec.ParseConfidence = types.ConfidenceMedium
		warnings = append(warnings, fmt.Sprintf("job section %q has no start date", sec.Title))
	default:
		sec.ParseConfidence = types.ConfidenceHigh
	}

	if sec.Title == "" && sec.Content == "" {
		return nil, warnings
	}
	return &sec, warnings
}

// extractJobLines pulls the role line, an optional organization line, and the
// date line out of a job chunk body so content holds only the description.
func (s *Segmenter) extractJobLines(sec *types.CVSection, body []string) {
	var rest []string
	titleSet := false
	orgSet := false

	for i, line := range body {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !titleSet {
			sec.Title = trimmed
			titleSet = true
			continue
		}
		if s.cfg.DateRangeRe.MatchString(trimmed) && len(trimmed) < 40 {
			// Pure date lines are metadata, not content.
			continue
		}
		if !orgSet && len(rest) == 0 && s.looksLikeOrganization(trimmed, body[i:]) {
			sec.Organization = trimmed
			orgSet = true
			continue
		}
		rest = append(rest, trimmed)
	}
	sec.Content = strings.Join(rest, "\n")
}

// looksLikeOrganization accepts a line as the employer name when it matches a
// known organizational suffix, or when it is short and a date line follows
// within the configured lookahead.
func (s *Segmenter) looksLikeOrganization(line string, following []string) bool {
	for _, re := range s.cfg.CompanyLinePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	if len(line) > 60 {
		return false
	}
	limit := s.cfg.TitleDateLookahead
	for i, next := range following {
		if i > limit {
			break
		}
		if s.cfg.DateRangeRe.MatchString(next) {
			return true
		}
	}
	return false
}

// splitChunks breaks text into line groups at blank lines and ALL-CAPS
// header lines. A caps line starts the chunk it belongs to.
func splitChunks(text string) [][]string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var chunks [][]string
	var current []string

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if isAllCapsHeader(trimmed) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return chunks
}

// isAllCapsHeader flags short, letter-bearing lines written entirely in
// upper case, the common visual convention for resume section headers.
func isAllCapsHeader(line string) bool {
	if len(line) < 2 || len(line) > 40 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		} else if unicode.IsDigit(r) {
			return false
		}
	}
	return hasLetter
}
