// Package pipeline orchestrates CV analysis: cleaning, segmentation with
// degradation tiers, analyzer-driven observation generation, strength
// detection and phrasing, ending in a stored session.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mbirkedal/cvlens/internal/analyzers"
	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/ingestion"
	"github.com/mbirkedal/cvlens/internal/llm"
	"github.com/mbirkedal/cvlens/internal/observations"
	"github.com/mbirkedal/cvlens/internal/phrasing"
	"github.com/mbirkedal/cvlens/internal/segmenter"
	"github.com/mbirkedal/cvlens/internal/session"
	"github.com/mbirkedal/cvlens/internal/types"
)

// ProgressEvent reports one step of an analysis run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	CVID    string `json:"cv_id,omitempty"`
}

// ProgressCallback is invoked as analysis advances. May be nil.
type ProgressCallback func(event ProgressEvent)

// Options parameterizes one analysis run
type Options struct {
	Filename string
	RawText  string
	// Progress receives step events; nil disables reporting.
	Progress ProgressCallback
}

// Analyzer wires the analysis stages together. The LLM client is optional:
// without one, segmentation stops at the heuristic tiers and observations
// carry their deterministic fallback messages.
type Analyzer struct {
	segCfg   segmenter.Config
	anCfg    analyzers.Config
	clock    dates.Clock
	client   llm.Client
	phrasing phrasing.Service
	store    *session.Store
}

// NewAnalyzer creates an Analyzer. client and phrasingService may be nil for
// offline operation; store must not be nil.
func NewAnalyzer(segCfg segmenter.Config, anCfg analyzers.Config, clock dates.Clock, client llm.Client, phrasingService phrasing.Service, store *session.Store) *Analyzer {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &Analyzer{
		segCfg:   segCfg,
		anCfg:    anCfg,
		clock:    clock,
		client:   client,
		phrasing: phrasingService,
		store:    store,
	}
}

// Analyze runs the full pipeline over raw CV text and stores the result. It
// degrades instead of failing: segmentation problems surface as warnings on
// the returned CV, and only an empty document is an error.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*types.CV, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	progress(ProgressEvent{Step: "clean", Message: "normalizing text"})
	text := ingestion.CleanText(opts.RawText)
	if text == "" {
		return nil, fmt.Errorf("document is empty")
	}

	progress(ProgressEvent{Step: "segment", Message: "segmenting document"})
	result := segmenter.New(a.segCfg, a.clock).Segment(text)

	if !segmenter.Usable(result) && a.client != nil {
		progress(ProgressEvent{Step: "segment", Message: "heuristics insufficient, asking the model"})
		llmResult := segmenter.NewLLMSegmenter(a.segCfg, a.clock, a.client).Segment(ctx, text)
		llmResult.Warnings = append(result.Warnings, llmResult.Warnings...)
		result = llmResult
	}
	if !segmenter.Usable(result) {
		result = segmenter.FallbackResult(text, result.Warnings)
	}

	progress(ProgressEvent{Step: "analyze", Message: "running analyzers"})
	ann := analyzers.NewAnnotations()
	gen := observations.NewGenerator(a.anCfg, a.clock)
	raws := gen.Generate(result.Sections, ann)
	strengths := observations.DetectStrengths(result.Sections, ann)

	progress(ProgressEvent{Step: "phrase", Message: "phrasing findings"})
	phraser := a.phrasing
	if phraser == nil {
		phraser = phrasing.NewOfflineService()
	}
	obs := phraser.PhraseAll(ctx, result.Sections, raws)
	strengthLines := phraser.PhraseStrengths(ctx, strengths)

	cv := &types.CV{
		ID:           uuid.New().String(),
		Filename:     opts.Filename,
		UploadedAt:   a.clock.Now().UTC(),
		RawText:      text,
		Sections:     result.Sections,
		Observations: obs,
		Strengths:    strengthLines,
		Warnings:     result.Warnings,
	}
	a.store.Put(cv)

	progress(ProgressEvent{Step: "done", Message: "analysis complete", CVID: cv.ID})
	log.Printf("[PIPELINE] analyzed %q: %d sections, %d observations, %d warnings",
		opts.Filename, len(cv.Sections), len(cv.Observations), len(cv.Warnings))
	return cv, nil
}

// RewriteSection asks the model to rewrite a stored section and records the
// result on the observation that requested it.
func (a *Analyzer) RewriteSection(ctx context.Context, cvID, sectionID, obsID, instruction string) (string, error) {
	if a.phrasing == nil {
		return "", fmt.Errorf("rewriting requires a configured model")
	}
	sec, err := a.store.GetSection(cvID, sectionID)
	if err != nil {
		return "", err
	}
	rewritten, err := a.phrasing.Rewrite(ctx, sec, instruction)
	if err != nil {
		return "", err
	}
	if obsID != "" {
		if err := a.store.SetRewrittenContent(cvID, obsID, rewritten); err != nil {
			return "", err
		}
	}
	return rewritten, nil
}

// Store exposes the session store for read-side handlers
func (a *Analyzer) Store() *session.Store {
	return a.store
}

