// Package dates provides parsing of heterogeneous resume date formats and
// month arithmetic used by the segmenter and analyzers.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock abstracts the current time so analyses are reproducible in tests
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock pinned to a single instant, for tests
type FixedClock struct {
	Instant time.Time
}

// Now returns the pinned instant
func (c FixedClock) Now() time.Time { return c.Instant }

// presentWords are sentinel tokens meaning "still ongoing". Includes locale
// variants seen in real documents (Danish, German, Spanish).
var presentWords = map[string]bool{
	"present":    true,
	"current":    true,
	"now":        true,
	"ongoing":    true,
	"today":      true,
	"nu":         true,
	"i dag":      true,
	"idag":       true,
	"heute":      true,
	"aktuell":    true,
	"actualidad": true,
	"presente":   true,
}

// monthNames maps English month names and abbreviations to month numbers
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	yearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	bareYearRe  = regexp.MustCompile(`^\d{4}$`)
	monthYearRe = regexp.MustCompile(`^([A-Za-z]+)\.?,?\s+(\d{4})$`)
	numericRe   = regexp.MustCompile(`^(\d{1,2})[/.](\d{4})$`)
)

// naturalLayouts are full-date layouts tried as a last resort
var naturalLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
}

// IsPresentWord reports whether raw is a sentinel meaning "still ongoing"
func IsPresentWord(raw string) bool {
	return presentWords[strings.ToLower(strings.TrimSpace(raw))]
}

// Parse converts a raw date string into a canonical instant. Sentinel words
// resolve to the clock's current time; partial dates resolve to the first of
// the month (or January 1 for bare years). The second return value is false
// when the string is not recognizable as a date. Parse never panics.
func Parse(raw string, clock Clock) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if IsPresentWord(raw) {
		return clock.Now(), true
	}

	if m := yearMonthRe.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}

	if bareYearRe.MatchString(raw) {
		year, _ := strconv.Atoi(raw)
		if year >= 1900 && year <= 2100 {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}

	if m := monthYearRe.FindStringSubmatch(raw); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			year, _ := strconv.Atoi(m[2])
			return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := numericRe.FindStringSubmatch(raw); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	for _, layout := range naturalLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// MonthsBetween computes the whole-month difference between two instants,
// floored to a minimum of 1. Two dates in the same month yield 1: a worked
// month counts as a full month of tenure.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if months < 1 {
		return 1
	}
	return months
}
