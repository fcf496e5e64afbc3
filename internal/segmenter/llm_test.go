package segmenter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbirkedal/cvlens/internal/llm"
	"github.com/mbirkedal/cvlens/internal/types"
)

// fakeClient returns scripted responses in order
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.GenerateJSON(context.Background(), "", llm.TierLite)
}

func (f *fakeClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeClient) Close() error { return nil }

func llmTestConfig(sleeps *[]time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return cfg
}

const validResponse = `[
	{"type": "job", "title": "Senior Engineer", "organization": "Acme Inc",
	 "startDate": "2020-01", "endDate": "present", "content": "Built the core product and ran the team."},
	{"type": "skill", "title": "Skills", "organization": "", "startDate": "", "endDate": "", "content": "Go, SQL, Kubernetes"}
]`

func TestLLMSegment_CleanResponse(t *testing.T) {
	var sleeps []time.Duration
	client := &fakeClient{responses: []string{validResponse}}
	seg := NewLLMSegmenter(llmTestConfig(&sleeps), segClock, client)

	result := seg.Segment(context.Background(), "raw resume text")

	require.Len(t, result.Sections, 2)
	assert.Empty(t, sleeps)
	job := result.Sections[0]
	assert.Equal(t, types.SectionJob, job.Type)
	assert.Equal(t, types.ConfidenceHigh, job.ParseConfidence)
	require.NotNil(t, job.EndDate)
	assert.Equal(t, segClock.Instant, *job.EndDate)
	assert.True(t, job.Duration >= 1)
}

func TestLLMSegment_TruncatedResponseSalvagesCompleteObjects(t *testing.T) {
	truncated := `[
		{"type": "job", "title": "Engineer", "content": "Did engineering work at scale."},
		{"type": "education", "title": "Education", "content": "BSc in CS."},
		{"type": "skill", "title": "Ski`

	var sleeps []time.Duration
	client := &fakeClient{responses: []string{truncated}}
	seg := NewLLMSegmenter(llmTestConfig(&sleeps), segClock, client)

	result := seg.Segment(context.Background(), "raw resume text")

	require.Len(t, result.Sections, 2)
	assert.Equal(t, types.SectionJob, result.Sections[0].Type)
	assert.Equal(t, types.SectionEducation, result.Sections[1].Type)
	for _, sec := range result.Sections {
		assert.Equal(t, types.ConfidenceMedium, sec.ParseConfidence)
	}
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "recovered 2")
}

func TestLLMSegment_RetriesWithFixedBackoff(t *testing.T) {
	var sleeps []time.Duration
	cfg := llmTestConfig(&sleeps)
	client := &fakeClient{
		errs:      []error{errors.New("transient failure"), nil},
		responses: []string{"", validResponse},
	}
	seg := NewLLMSegmenter(cfg, segClock, client)

	result := seg.Segment(context.Background(), "raw resume text")

	require.Len(t, result.Sections, 2)
	require.Len(t, sleeps, 1)
	assert.Equal(t, cfg.RetryDelay, sleeps[0])
	assert.Equal(t, 2, client.calls)
}

func TestLLMSegment_RateLimitGetsLongerBackoff(t *testing.T) {
	var sleeps []time.Duration
	cfg := llmTestConfig(&sleeps)
	client := &fakeClient{
		errs:      []error{errors.New("googleapi: Error 429: quota exceeded"), nil},
		responses: []string{"", validResponse},
	}
	seg := NewLLMSegmenter(cfg, segClock, client)

	seg.Segment(context.Background(), "raw resume text")

	require.Len(t, sleeps, 1)
	assert.Equal(t, cfg.RateLimitDelay, sleeps[0])
}

func TestLLMSegment_TotalFailureFallsBack(t *testing.T) {
	var sleeps []time.Duration
	cfg := llmTestConfig(&sleeps)
	client := &fakeClient{
		errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}
	seg := NewLLMSegmenter(cfg, segClock, client)

	result := seg.Segment(context.Background(), "the whole raw text")

	require.Len(t, result.Sections, 1)
	assert.Equal(t, types.SectionOther, result.Sections[0].Type)
	assert.Equal(t, types.ConfidenceLow, result.Sections[0].ParseConfidence)
	assert.Equal(t, "the whole raw text", result.Sections[0].Content)
	assert.Equal(t, 3, client.calls)
	assert.Len(t, sleeps, 2)
	// Three failed attempts plus the fallback notice.
	assert.Len(t, result.Warnings, 4)
}

func TestLLMSegment_InputIsCapped(t *testing.T) {
	var sleeps []time.Duration
	cfg := llmTestConfig(&sleeps)
	cfg.LLMInputCap = 10

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}

	client := &fakeClient{responses: []string{validResponse}}
	seg := NewLLMSegmenter(cfg, segClock, client)
	result := seg.Segment(context.Background(), string(long))

	require.Len(t, result.Sections, 2)
}
