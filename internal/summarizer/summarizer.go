package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pep299/company-summarizer/internal/config"
	"github.com/pep299/company-summarizer/internal/document"
	"github.com/pep299/company-summarizer/internal/llm"
	"github.com/pep299/company-summarizer/internal/logging"
	"github.com/pep299/company-summarizer/internal/model"
	"github.com/pep299/company-summarizer/internal/prompt"
)

// Summarizer turns a company URL into a structured summary
type Summarizer interface {
	GetSummary(ctx context.Context, url string) (*model.SummaryResultResponse, error)
}

// Loader fetches raw pages
type Loader interface {
	Load(ctx context.Context, urls ...string) ([]document.Document, error)
}

// Transformer reduces raw pages to tag-filtered text
type Transformer interface {
	TransformDocuments(docs []document.Document, tags []string) ([]document.Document, error)
}

// PromptFormatter renders the generation request for a page text
type PromptFormatter interface {
	Format(document string) (string, error)
}

// WebSummarizer runs the fetch, extract, generate and parse pipeline
type WebSummarizer struct {
	loader      Loader
	transformer Transformer
	prompt      PromptFormatter
	model       llm.Model
	tags        []string
	logger      logging.Logger
}

// NewWebSummarizer creates a summarizer from its collaborators.
// Empty tags fall back to document.DefaultTags.
func NewWebSummarizer(loader Loader, transformer Transformer, tmpl PromptFormatter, m llm.Model, tags []string, logger logging.Logger) *WebSummarizer {
	if len(tags) == 0 {
		tags = document.DefaultTags
	}
	return &WebSummarizer{
		loader:      loader,
		transformer: transformer,
		prompt:      tmpl,
		model:       m,
		tags:        append([]string(nil), tags...),
		logger:      logger,
	}
}

// FromConfig wires the production loader, transformer, prompt and model
func FromConfig(cfg *config.Config, logger logging.Logger) (*WebSummarizer, error) {
	tmpl, err := prompt.Load(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("loading prompt: %w", err)
	}

	m, err := llm.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating model: %w", err)
	}

	return NewWebSummarizer(
		document.NewLoader(cfg.FetchUserAgent, cfg.FetchInsecureSkipVerify),
		document.NewTransformer(),
		tmpl,
		m,
		cfg.ExtractTags,
		logger,
	), nil
}

// GetSummary fetches the page at url and asks the model for a structured summary.
// Every failure is returned as a *StageError; nothing is retried.
func (s *WebSummarizer) GetSummary(ctx context.Context, url string) (*model.SummaryResultResponse, error) {
	pages, err := s.loader.Load(ctx, url)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}

	docs, err := s.transformer.TransformDocuments(pages, s.tags)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	if len(docs) == 0 {
		return nil, &StageError{Stage: StageExtract, Err: errors.New("no documents extracted")}
	}

	// Only the first page is summarized
	request, err := s.prompt.Format(docs[0].PageContent)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}

	generation, err := s.model.Generate(ctx, request)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}

	s.logger.Infof("Input tokens: %d", generation.InputTokens)
	s.logger.Infof("Output tokens: %d", generation.OutputTokens)

	result, err := model.ParseSummaryResult([]byte(ExtractJSON(generation.Text)))
	if err != nil {
		return nil, &StageError{Stage: StageParse, Err: err}
	}

	response := model.NewSummaryResultResponse(result, FullSummary(result))
	return &response, nil
}

// FullSummary flattens a summary into four labelled lines
func FullSummary(result model.SummaryResult) string {
	return strings.Join([]string{
		"Имя компании: " + result.Name,
		"Описание: " + result.Description,
		"Ценность продукта: " + strings.Join(result.ProofPoints, " "),
		"Болевые точки: " + strings.Join(result.PainPoints, " "),
	}, "\n")
}

// ExtractJSON unwraps a Markdown code fence around the reply when present
// and unescapes markdown-escaped underscores.
func ExtractJSON(text string) string {
	payload := strings.TrimSpace(text)
	if body, ok := stripFence(payload); ok {
		payload = body
	} else if body, ok := looseFence(payload); ok {
		payload = body
	}
	return strings.ReplaceAll(payload, `\_`, "_")
}

// stripFence returns the body of a reply that opens with a ``` line and closes with ```
func stripFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}

	newline := strings.IndexByte(text, '\n')
	if newline < 0 {
		return "", false
	}

	// The opening line may carry a single language tag such as json
	if info := strings.TrimSpace(text[3:newline]); strings.ContainsAny(info, " `") {
		return "", false
	}

	body := text[newline+1:]
	end := strings.LastIndex(body, "```")
	if end < 0 || strings.TrimSpace(body[end+3:]) != "" {
		return "", false
	}

	return strings.TrimSpace(body[:end]), true
}

// looseFence accepts a fence opened on the payload line or left unclosed,
// but only when what remains is a JSON document
func looseFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}

	body := strings.TrimPrefix(text, "```")
	body = strings.TrimPrefix(body, "json")
	body = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body), "```"))
	if !json.Valid([]byte(strings.ReplaceAll(body, `\_`, "_"))) {
		return "", false
	}
	return body, true
}
