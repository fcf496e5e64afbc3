// Package ingestion normalizes uploaded CV text before segmentation and
// captures document metadata for the session.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	blankRunsRe  = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes raw CV text while preserving the line structure the
// segmenter depends on: blank lines stay as section separators, bullets stay
// bullets, and all-caps header lines are untouched.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF and bare CR to LF).
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRunsRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine normalizes a single line without disturbing structure markers
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")

	// Unify the bullet glyphs PDF extractors produce.
	for _, glyph := range []string{"• ", "· ", "▪ ", "– ", "* "} {
		if strings.HasPrefix(trimmed, glyph) {
			indent := len(line) - len(trimmed)
			rest := multiSpaceRe.ReplaceAllString(strings.TrimPrefix(trimmed, glyph), " ")
			return strings.Repeat(" ", indent) + "- " + rest
		}
	}

	// Collapse runs of spaces in regular lines, preserving indentation.
	indent := len(line) - len(trimmed)
	body := multiSpaceRe.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + body
	}
	return body
}

// IngestFromFile reads a plain-text CV, cleans it, and returns the cleaned
// text with its metadata.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleaned := CleanText(string(content))
	return cleaned, NewMetadata(cleaned, path), nil
}
