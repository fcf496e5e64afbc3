package segmenter

import (
	"fmt"
	"strings"

	"github.com/mbirkedal/cvlens/internal/types"
)

// jobBlock is a run of lines believed to describe one position
type jobBlock struct {
	startLine int
	lines     []string
	company   string
	title     string
}

// detectJobPatterns is the secondary strategy for documents without explicit
// headers: scan line by line for organizational-suffix lines and
// title-with-nearby-dates lines, and group them into job blocks.
func (s *Segmenter) detectJobPatterns(text string) ([]types.CVSection, []string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var blocks []*jobBlock
	var current *jobBlock

	flush := func() {
		if current != nil {
			blocks = append(blocks, current)
			current = nil
		}
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if current != nil {
				current.lines = append(current.lines, "")
			}
			continue
		}

		isCompany := s.isCompanyLine(trimmed)
		isDatedTitle := s.isTitleLine(trimmed) && s.dateWithin(lines, i+1)

		switch {
		case current == nil && (isCompany || isDatedTitle):
			current = &jobBlock{startLine: i}
			if isCompany {
				current.company = trimmed
			} else {
				current.title = trimmed
			}
			current.lines = append(current.lines, trimmed)
		case current != nil && isCompany && current.company != "":
			// A second company line starts the next position.
			flush()
			current = &jobBlock{startLine: i, company: trimmed, lines: []string{trimmed}}
		case current != nil && isDatedTitle && i-current.startLine > 5:
			flush()
			current = &jobBlock{startLine: i, title: trimmed, lines: []string{trimmed}}
		case current != nil:
			if isCompany && current.company == "" {
				current.company = trimmed
			}
			if isDatedTitle && current.title == "" {
				current.title = trimmed
			}
			current.lines = append(current.lines, trimmed)
		}
	}
	flush()

	var sections []types.CVSection
	var warnings []string
	for _, block := range blocks {
		sec := s.blockToSection(block)
		if sec == nil {
			continue
		}
		sections = append(sections, *sec)
		if sec.ParseConfidence == types.ConfidenceMedium {
			warnings = append(warnings, fmt.Sprintf("job %q inferred from patterns without dates", sec.Title))
		}
	}
	return sections, warnings
}

// blockToSection turns a job block into a section, discarding blocks too
// short to be a real position.
func (s *Segmenter) blockToSection(block *jobBlock) *types.CVSection {
	body := strings.TrimSpace(strings.Join(block.lines, "\n"))
	if len(body) < s.cfg.MinBlockChars {
		return nil
	}

	start, end := s.extractDateRange(body)

	title := block.title
	if title == "" {
		title = firstLine(body)
	}

	// Content excludes the heading lines the block was keyed on.
	var content []string
	for _, line := range block.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == block.title || trimmed == block.company {
			continue
		}
		if s.cfg.DateRangeRe.MatchString(trimmed) && len(trimmed) < 40 {
			continue
		}
		content = append(content, trimmed)
	}

	confidence := types.ConfidenceHigh
	if start == nil {
		confidence = types.ConfidenceMedium
	}

	sec := &types.CVSection{
		Type:            types.SectionJob,
		Title:           title,
		Organization:    block.company,
		StartDate:       start,
		EndDate:         end,
		Duration:        durationFor(start, end),
		Content:         strings.Join(content, "\n"),
		ParseConfidence: confidence,
	}
	sec.WordCount = types.CountWords(sec.Content)
	return sec
}

func (s *Segmenter) isCompanyLine(line string) bool {
	if len(line) > 70 {
		return false
	}
	for _, re := range s.cfg.CompanyLinePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (s *Segmenter) isTitleLine(line string) bool {
	if len(line) > 70 {
		return false
	}
	for _, re := range s.cfg.TitleLinePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// dateWithin reports whether a date range appears in the next few lines
// starting at from.
func (s *Segmenter) dateWithin(lines []string, from int) bool {
	for i := from; i < len(lines) && i < from+s.cfg.TitleDateLookahead; i++ {
		if s.cfg.DateRangeRe.MatchString(lines[i]) {
			return true
		}
	}
	return false
}
