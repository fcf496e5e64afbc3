package segmenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/types"
)

var segClock = dates.FixedClock{Instant: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}

func newTestSegmenter() *Segmenter {
	return New(DefaultConfig(), segClock)
}

func TestSegment_SingleJobWithDates(t *testing.T) {
	text := "EXPERIENCE\nSenior Engineer\nAcme Inc\nJan 2020 - Dec 2020\nBuilt things."

	result := newTestSegmenter().Segment(text)

	require.Len(t, result.Sections, 1)
	sec := result.Sections[0]
	assert.Equal(t, types.SectionJob, sec.Type)
	assert.Equal(t, "Senior Engineer", sec.Title)
	assert.Equal(t, "Acme Inc", sec.Organization)
	require.NotNil(t, sec.StartDate)
	require.NotNil(t, sec.EndDate)
	assert.Equal(t, time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), *sec.StartDate)
	assert.Equal(t, time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), *sec.EndDate)
	assert.Equal(t, 11, sec.Duration)
	assert.Equal(t, "Built things.", sec.Content)
	assert.Equal(t, 2, sec.WordCount)
	assert.Equal(t, types.ConfidenceHigh, sec.ParseConfidence)
}

func TestSegment_PresentEndDateResolvesToClock(t *testing.T) {
	text := "EXPERIENCE\nStaff Engineer\nAcme Inc\nJan 2020 - Present\nShipped the platform."

	result := newTestSegmenter().Segment(text)

	require.Len(t, result.Sections, 1)
	sec := result.Sections[0]
	require.NotNil(t, sec.StartDate)
	require.NotNil(t, sec.EndDate)
	assert.Equal(t, segClock.Instant, *sec.EndDate)
	assert.Equal(t, dates.MonthsBetween(*sec.StartDate, *sec.EndDate), sec.Duration)
}

func TestSegment_MultipleHeaderSections(t *testing.T) {
	text := `SUMMARY
Seasoned backend developer with a focus on distributed systems.

EXPERIENCE
Backend Developer
Initech Ltd
2019 - 2022
Maintained the billing pipeline and on-call rotation.

EDUCATION
BSc Computer Science, 2015 - 2018

SKILLS
Go, PostgreSQL, Kubernetes`

	result := newTestSegmenter().Segment(text)

	require.Len(t, result.Sections, 4)
	assert.Equal(t, types.SectionSummary, result.Sections[0].Type)
	assert.Equal(t, types.SectionJob, result.Sections[1].Type)
	assert.Equal(t, types.SectionEducation, result.Sections[2].Type)
	assert.Equal(t, types.SectionSkill, result.Sections[3].Type)

	job := result.Sections[1]
	assert.Equal(t, "Backend Developer", job.Title)
	assert.Equal(t, "Initech Ltd", job.Organization)
	assert.Equal(t, 36, job.Duration)
}

func TestSegment_LeadingContentBecomesOtherSection(t *testing.T) {
	text := "Jane Doe\njane@example.com\n+45 12 34 56 78\n\nSKILLS\nGo, SQL"

	result := newTestSegmenter().Segment(text)

	require.Len(t, result.Sections, 2)
	assert.Equal(t, types.SectionOther, result.Sections[0].Type)
	assert.Equal(t, types.ConfidenceLow, result.Sections[0].ParseConfidence)
	assert.NotEmpty(t, result.Warnings)
}

func TestSegment_JobWithoutDatesIsMediumConfidence(t *testing.T) {
	text := "EXPERIENCE\nConsultant\nSolved problems for clients across several industries."

	result := newTestSegmenter().Segment(text)

	require.Len(t, result.Sections, 1)
	assert.Equal(t, types.ConfidenceMedium, result.Sections[0].ParseConfidence)
	assert.NotEmpty(t, result.Warnings)
}

func TestSegment_UnmatchedChunksAccumulate(t *testing.T) {
	text := `EXPERIENCE
Platform Engineer
Hooli Inc
2020 - 2023
Ran the deployment platform.

Also led the migration to managed Kubernetes and mentored two juniors.`

	result := newTestSegmenter().Segment(text)

	require.Len(t, result.Sections, 1)
	assert.Contains(t, result.Sections[0].Content, "mentored two juniors")
}

func TestSegment_SectionIDsAreStable(t *testing.T) {
	text := "SUMMARY\nBuilder of systems.\n\nSKILLS\nGo"
	a := newTestSegmenter().Segment(text)
	b := newTestSegmenter().Segment(text)
	require.Equal(t, len(a.Sections), len(b.Sections))
	for i := range a.Sections {
		assert.Equal(t, a.Sections[i].ID, b.Sections[i].ID)
	}
	assert.Equal(t, "sec_001", a.Sections[0].ID)
}

func TestDetectJobPatterns_NoHeaders(t *testing.T) {
	text := `Jane Doe

Acme Corp
Senior Software Engineer
Jan 2020 - Dec 2022
Designed and built the payment integration layer used by all teams.

Globex Ltd
Software Developer
2017 - 2019
Developed internal tooling for the logistics department and its partners.`

	result := newTestSegmenter().Segment(text)

	jobs := 0
	for _, sec := range result.Sections {
		if sec.Type == types.SectionJob {
			jobs++
			assert.NotEmpty(t, sec.Organization)
			assert.NotNil(t, sec.StartDate)
		}
	}
	assert.Equal(t, 2, jobs)
}

func TestDetectJobPatterns_DiscardsShortBlocks(t *testing.T) {
	s := newTestSegmenter()
	sections, _ := s.detectJobPatterns("Acme Corp\nshort")
	assert.Empty(t, sections)
}

func TestDetectJobPatterns_NotRunWhenHeadersFoundJobs(t *testing.T) {
	// A document with a job header must not get duplicate pattern-inferred jobs.
	text := `EXPERIENCE
Senior Engineer
Acme Inc
Jan 2020 - Dec 2020
Owned the ingestion service end to end for the whole period.`

	result := newTestSegmenter().Segment(text)
	assert.Equal(t, 1, countType(result.Sections, types.SectionJob))
}

func TestMerge_ReplacesOverlappingOther(t *testing.T) {
	other := types.CVSection{
		Type:    types.SectionOther,
		Title:   "Misc",
		Content: "Acme Corp\nSenior Software Engineer\nbuilt many things here",
	}
	job := types.CVSection{
		Type:  types.SectionJob,
		Title: "Senior Software Engineer",
	}

	merged := Merge([]types.CVSection{other}, []types.CVSection{job}, ContentOverlaps)

	require.Len(t, merged, 1)
	assert.Equal(t, types.SectionJob, merged[0].Type)
}

func TestMerge_AppendsNonOverlapping(t *testing.T) {
	base := []types.CVSection{{Type: types.SectionSummary, Title: "Summary", Content: "a generalist"}}
	job := types.CVSection{Type: types.SectionJob, Title: "Platform Engineer", Content: "ran the platform"}

	merged := Merge(base, []types.CVSection{job}, ContentOverlaps)

	require.Len(t, merged, 2)
	assert.Equal(t, types.SectionJob, merged[1].Type)
}

func TestMerge_InjectablePredicate(t *testing.T) {
	base := []types.CVSection{{Type: types.SectionOther, Title: "x", Content: "unrelated"}}
	job := types.CVSection{Type: types.SectionJob, Title: "y"}

	always := func(a, b types.CVSection) bool { return true }
	merged := Merge(base, []types.CVSection{job}, always)

	require.Len(t, merged, 1)
	assert.Equal(t, types.SectionJob, merged[0].Type)
}

func TestUsable_Policy(t *testing.T) {
	assert.False(t, Usable(nil))
	assert.False(t, Usable(&Result{}))
	assert.False(t, Usable(&Result{
		Sections:          []types.CVSection{{Title: "only one"}},
		OverallConfidence: types.ConfidenceLow,
	}))
	// Lenient: low confidence with two or more sections is still usable.
	assert.True(t, Usable(&Result{
		Sections:          []types.CVSection{{Title: "a"}, {Title: "b"}},
		OverallConfidence: types.ConfidenceLow,
	}))
	assert.True(t, Usable(&Result{
		Sections:          []types.CVSection{{Title: "a"}},
		OverallConfidence: types.ConfidenceHigh,
	}))
}

func TestFallbackResult_WrapsEverything(t *testing.T) {
	r := FallbackResult("some raw resume text\nwith lines", nil)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, types.SectionOther, r.Sections[0].Type)
	assert.Equal(t, types.ConfidenceLow, r.Sections[0].ParseConfidence)
	assert.Equal(t, types.ConfidenceLow, r.OverallConfidence)
	assert.NotEmpty(t, r.Warnings)
}

func TestOverallConfidence_Ratios(t *testing.T) {
	s := newTestSegmenter()
	text := "0123456789" // 10 chars of raw text

	grade := func(parsedChars int) types.ParseConfidence {
		return s.overallConfidence(text, []types.CVSection{{Content: text[:parsedChars]}})
	}

	assert.Equal(t, types.ConfidenceLow, grade(6))
	assert.Equal(t, types.ConfidenceMedium, grade(7))
	assert.Equal(t, types.ConfidenceMedium, grade(8))
	assert.Equal(t, types.ConfidenceHigh, grade(9))
}
