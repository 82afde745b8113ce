// Package summarize generates structured meeting summaries from
// transcripts, with pluggable LLM providers built on langchaingo.
package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raphaelgruber/meetnotes/internal/config"
	"github.com/raphaelgruber/meetnotes/internal/models"
)

// openRouterBaseURL is the OpenAI-compatible endpoint OpenRouter exposes.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Summarizer is the capability interface over all providers. A failed
// or disabled summarization never yields a partially filled Summary.
type Summarizer interface {
	// Summarize sends the transcript and optional user notes to the
	// provider and returns a structured summary.
	Summarize(ctx context.Context, transcript, userNotes string) (*models.Summary, error)

	// Name identifies the provider for logs and notes.
	Name() string
}

// New creates a Summarizer from configuration. Provider selection is a
// pure configuration value; missing credentials fail here, not at
// summarize time.
func New(cfg config.Config, log *slog.Logger) (Summarizer, error) {
	switch cfg.AIProvider {
	case config.ProviderNone:
		return Disabled{}, nil

	case config.ProviderOllama:
		model, err := ollama.New(
			ollama.WithModel(cfg.AIModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		return &llmSummarizer{llm: model, provider: "ollama", model: cfg.AIModel, log: log}, nil

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required (set OPENAI_API_KEY)")
		}
		model, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.AIModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return &llmSummarizer{llm: model, provider: "openai", model: cfg.AIModel, log: log}, nil

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required (set ANTHROPIC_API_KEY)")
		}
		model, err := anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.AIModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}
		return &llmSummarizer{llm: model, provider: "anthropic", model: cfg.AIModel, log: log}, nil

	case config.ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OpenRouter API key required (set OPENROUTER_API_KEY)")
		}
		model, err := openai.New(
			openai.WithToken(cfg.OpenRouterAPIKey),
			openai.WithModel(cfg.AIModel),
			openai.WithBaseURL(openRouterBaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("create openrouter model: %w", err)
		}
		return &llmSummarizer{llm: model, provider: "openrouter", model: cfg.AIModel, log: log}, nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AIProvider)
	}
}

// Disabled is the no-op provider: always succeeds with an empty
// Summary and performs no I/O.
type Disabled struct{}

// Compile-time check that all providers implement Summarizer.
var (
	_ Summarizer = Disabled{}
	_ Summarizer = (*llmSummarizer)(nil)
)

func (Disabled) Summarize(ctx context.Context, transcript, userNotes string) (*models.Summary, error) {
	return &models.Summary{}, nil
}

func (Disabled) Name() string { return "disabled" }
