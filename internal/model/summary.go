package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PointsCount is the exact number of proof points and pain points a summary carries
const PointsCount = 5

// ErrInvalidURL is returned when a URL does not use the http or https scheme
var ErrInvalidURL = errors.New("invalid URL")

// SummaryResult is the structured marketing summary of a company website
type SummaryResult struct {
	Name        string   `json:"name" jsonschema_description:"Название компании"`
	Description string   `json:"description" jsonschema_description:"Презентация продукта компании, подробное продающее описание продукта, которое заставит клиента приобрести этот товар"`
	ProofPoints []string `json:"proof_points" jsonschema:"minItems=5,maxItems=5" jsonschema_description:"Список из 5 строк. Описание ценностного предложения. Конкретные пункты с преимуществами продукта, которые позволят продать его"`
	PainPoints  []string `json:"pain_points" jsonschema:"minItems=5,maxItems=5" jsonschema_description:"Список из 5 строк. Описание проблем клиентов, которые может решить продукт компании"`
}

// SummaryResultResponse is a validated SummaryResult plus its flattened text form
type SummaryResultResponse struct {
	SummaryResult
	FullSummary string `json:"full_summary"`
}

// URLInput is the request body of the summarize endpoint
type URLInput struct {
	URL string `json:"url"`
}

// ValidationError reports a field that violates a structural constraint
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewSummaryResult builds a SummaryResult, enforcing the point counts
func NewSummaryResult(name, description string, proofPoints, painPoints []string) (SummaryResult, error) {
	if err := validatePoints("proof_points", proofPoints); err != nil {
		return SummaryResult{}, err
	}
	if err := validatePoints("pain_points", painPoints); err != nil {
		return SummaryResult{}, err
	}

	return SummaryResult{
		Name:        name,
		Description: description,
		ProofPoints: append([]string(nil), proofPoints...),
		PainPoints:  append([]string(nil), painPoints...),
	}, nil
}

// ParseSummaryResult decodes a JSON object into a validated SummaryResult.
// Malformed JSON yields a decode error; missing or malformed fields yield a *ValidationError.
func ParseSummaryResult(data []byte) (SummaryResult, error) {
	var raw struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		ProofPoints []string `json:"proof_points"`
		PainPoints  []string `json:"pain_points"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return SummaryResult{}, fmt.Errorf("decoding summary: %w", err)
	}

	if raw.Name == nil {
		return SummaryResult{}, &ValidationError{Field: "name", Message: "field required"}
	}
	if raw.Description == nil {
		return SummaryResult{}, &ValidationError{Field: "description", Message: "field required"}
	}

	return NewSummaryResult(*raw.Name, *raw.Description, raw.ProofPoints, raw.PainPoints)
}

// NewSummaryResultResponse attaches the caller-derived full summary to a validated result
func NewSummaryResultResponse(result SummaryResult, fullSummary string) SummaryResultResponse {
	return SummaryResultResponse{
		SummaryResult: result,
		FullSummary:   fullSummary,
	}
}

// Validate checks that the URL uses the http or https scheme
func (in URLInput) Validate() error {
	if strings.HasPrefix(in.URL, "http://") || strings.HasPrefix(in.URL, "https://") {
		return nil
	}
	return ErrInvalidURL
}

func validatePoints(field string, points []string) error {
	if points == nil {
		return &ValidationError{Field: field, Message: "field required"}
	}
	if len(points) != PointsCount {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected %d items, got %d", PointsCount, len(points)),
		}
	}
	return nil
}
