package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

// retryDelay is the backoff before the single permitted retry.
// Overridable in tests.
var retryDelay = 2 * time.Second

// llmSummarizer drives any langchaingo-backed provider.
type llmSummarizer struct {
	llm      llms.Model
	provider string
	model    string
	log      *slog.Logger
}

func (s *llmSummarizer) Name() string {
	return s.provider
}

// Summarize sends the transcript to the provider. Transient network
// failures get exactly one retry with backoff; rejections and a second
// transient failure are terminal for this phase.
func (s *llmSummarizer) Summarize(ctx context.Context, transcript, userNotes string) (*models.Summary, error) {
	prompt := buildPrompt(transcript, userNotes)
	s.log.Info("generating summary", "provider", s.provider, "model", s.model)

	response, err := s.generate(ctx, prompt)
	if err != nil {
		kind := classify(err)
		if !errors.Is(kind, ErrProviderUnreachable) {
			return nil, fmt.Errorf("%w: %v", kind, err)
		}

		s.log.Warn("provider unreachable, retrying once", "provider", s.provider, "error", err)
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrProviderUnreachable, ctx.Err())
		}

		response, err = s.generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", classify(err), err)
		}
	}

	summary := parseResponse(response)
	s.log.Info("summary generated",
		"provider", s.provider,
		"key_points", len(summary.KeyPoints),
		"action_items", len(summary.ActionItems),
		"decisions", len(summary.Decisions))
	return summary, nil
}

func (s *llmSummarizer) generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithTemperature(0.3),
	)
}
