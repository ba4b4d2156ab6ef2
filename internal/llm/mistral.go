package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// MistralModel talks to Mistral through its OpenAI-compatible chat completions API
type MistralModel struct {
	client openai.Client
	model  string
}

// NewMistralModel creates a new Mistral chat model.
// Requests are sent once; failures are not retried.
func NewMistralModel(apiKey, model, baseURL string) *MistralModel {
	return &MistralModel{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
		model: model,
	}
}

// Generate sends the prompt as a single user message at temperature 0
func (m *MistralModel) Generate(ctx context.Context, prompt string) (*Generation, error) {
	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("calling chat completions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	return &Generation{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
