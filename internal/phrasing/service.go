// Package phrasing is the single boundary where signals become user-facing
// language. Everything upstream works with signal keys and context bags;
// nothing upstream produces prose.
package phrasing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mbirkedal/cvlens/internal/llm"
	"github.com/mbirkedal/cvlens/internal/prompts"
	"github.com/mbirkedal/cvlens/internal/types"
)

// Service phrases observations and strengths and rewrites section content
type Service interface {
	// PhraseAll promotes raw signals to user-facing observations, phrasing
	// their messages concurrently. It never fails: on LLM errors the
	// per-signal fallback message is used.
	PhraseAll(ctx context.Context, sections []types.CVSection, raws []types.RawObservation) []types.Observation
	// PhraseStrengths turns strength signals into short positive sentences
	PhraseStrengths(ctx context.Context, strengths []types.StrengthSignal) []string
	// Rewrite rewrites a section's content according to an instruction
	Rewrite(ctx context.Context, section *types.CVSection, instruction string) (string, error)
}

// Config controls the phrasing boundary
type Config struct {
	Language    string        // BCP-47-ish label passed to the prompts, e.g. "English"
	CallTimeout time.Duration // applied per LLM call
	Concurrency int           // parallel phrasing calls
}

// DefaultConfig returns the phrasing defaults
func DefaultConfig() Config {
	return Config{
		Language:    "English",
		CallTimeout: 20 * time.Second,
		Concurrency: 4,
	}
}

type service struct {
	client llm.Client
	cfg    Config
}

// NewService creates the LLM-backed phrasing service
func NewService(client llm.Client, cfg Config) Service {
	if cfg.Language == "" {
		cfg.Language = "English"
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 20 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &service{client: client, cfg: cfg}
}

func (s *service) PhraseAll(ctx context.Context, sections []types.CVSection, raws []types.RawObservation) []types.Observation {
	titles := make(map[string]string, len(sections))
	for _, sec := range sections {
		titles[sec.ID] = sec.Title
	}

	out := make([]types.Observation, len(raws))
	for i, raw := range raws {
		action, inputPrompt := actionFor(raw.Signal)
		out[i] = types.Observation{
			ID:          uuid.New().String(),
			SectionID:   raw.SectionID,
			Type:        raw.Type,
			Signal:      raw.Signal,
			Confidence:  raw.Confidence,
			Message:     fallbackMessage(raw),
			InputPrompt: inputPrompt,
			ActionType:  action,
			Status:      types.StatusPending,
			Context:     raw.Context,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range out {
		g.Go(func() error {
			msg, err := s.phraseObservation(gctx, titles[out[i].SectionID], raws[i])
			if err != nil {
				log.Printf("[PHRASING] falling back for signal %s: %v", out[i].Signal, err)
				return nil // fallback message already in place
			}
			out[i].Message = msg
			return nil
		})
	}
	_ = g.Wait() // goroutines only log, never return errors
	return out
}

func (s *service) phraseObservation(ctx context.Context, sectionTitle string, raw types.RawObservation) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	prompt := prompts.Format(prompts.MustGet("phrasing.json", "phrase-observation"), map[string]string{
		"SectionTitle": sectionTitle,
		"Language":     s.cfg.Language,
		"Signal":       raw.Signal,
		"Context":      contextJSON(raw.Context),
	})
	text, err := s.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty phrasing response")
	}
	return text, nil
}

func (s *service) PhraseStrengths(ctx context.Context, strengths []types.StrengthSignal) []string {
	out := make([]string, len(strengths))
	for i, strength := range strengths {
		out[i] = fallbackStrength(strength)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range strengths {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.cfg.CallTimeout)
			defer cancel()

			prompt := prompts.Format(prompts.MustGet("phrasing.json", "phrase-strength"), map[string]string{
				"Language": s.cfg.Language,
				"Signal":   strengths[i].Signal,
				"Context":  contextJSON(strengths[i].Context),
			})
			text, err := s.client.GenerateContent(callCtx, prompt, llm.TierLite)
			if err != nil || strings.TrimSpace(text) == "" {
				log.Printf("[PHRASING] falling back for strength %s: %v", strengths[i].Signal, err)
				return nil
			}
			out[i] = strings.TrimSpace(text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *service) Rewrite(ctx context.Context, section *types.CVSection, instruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	prompt := prompts.Format(prompts.MustGet("phrasing.json", "rewrite-section"), map[string]string{
		"SectionTitle": section.Title,
		"Organization": section.Organization,
		"Duration":     fmt.Sprintf("%d", section.Duration),
		"Instruction":  instruction,
		"Content":      section.Content,
	})
	text, err := s.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("rewrite failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("rewrite returned empty content")
	}
	return text, nil
}

// offline implements Service with the deterministic fallback templates,
// for running without a configured model.
type offline struct{}

// NewOfflineService creates a Service that never calls a model
func NewOfflineService() Service {
	return offline{}
}

func (offline) PhraseAll(_ context.Context, _ []types.CVSection, raws []types.RawObservation) []types.Observation {
	out := make([]types.Observation, len(raws))
	for i, raw := range raws {
		action, inputPrompt := actionFor(raw.Signal)
		out[i] = types.Observation{
			ID:          uuid.New().String(),
			SectionID:   raw.SectionID,
			Type:        raw.Type,
			Signal:      raw.Signal,
			Confidence:  raw.Confidence,
			Message:     fallbackMessage(raw),
			InputPrompt: inputPrompt,
			ActionType:  action,
			Status:      types.StatusPending,
			Context:     raw.Context,
		}
	}
	return out
}

func (offline) PhraseStrengths(_ context.Context, strengths []types.StrengthSignal) []string {
	out := make([]string, len(strengths))
	for i, strength := range strengths {
		out[i] = fallbackStrength(strength)
	}
	return out
}

func (offline) Rewrite(context.Context, *types.CVSection, string) (string, error) {
	return "", fmt.Errorf("rewriting requires a configured model")
}

// contextJSON renders a context bag for prompt interpolation
func contextJSON(bag map[string]any) string {
	if len(bag) == 0 {
		return "{}"
	}
	data, err := json.Marshal(bag)
	if err != nil {
		return "{}"
	}
	return string(data)
}
