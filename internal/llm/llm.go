package llm

import (
	"context"
	"fmt"

	"github.com/pep299/company-summarizer/internal/config"
)

// Model generates a completion for a single prompt
type Model interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
}

// Generation is a model reply with its token usage
type Generation struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// New creates the model selected by the configured provider
func New(cfg *config.Config) (Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderMistral:
		return NewMistralModel(cfg.MistralAPIKey, cfg.MistralModel, cfg.MistralBaseURL), nil
	case config.ProviderGemini:
		return NewGeminiModel(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
