package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"text/template"

	"github.com/invopop/jsonschema"

	"github.com/pep299/company-summarizer/internal/model"
)

// Language used for both reading the page and writing the summary
const Language = "Russian"

//go:embed templates/summary.tmpl
var templatesFS embed.FS

const defaultTemplate = "templates/summary.tmpl"

// Data holds the variables available to a prompt template
type Data struct {
	InputLanguage      string
	OutputLanguage     string
	FormatInstructions string
	Document           string
}

// Template renders generation requests for the summarizer
type Template struct {
	tmpl               *template.Template
	formatInstructions string
}

// New returns the embedded default template
func New() (*Template, error) {
	text, err := templatesFS.ReadFile(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("reading embedded template: %w", err)
	}
	return Parse(string(text))
}

// Load reads a template from path, or the embedded default when path is empty
func Load(path string) (*Template, error) {
	if path == "" {
		return New()
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt file: %w", err)
	}
	return Parse(string(text))
}

// Parse compiles template text
func Parse(text string) (*Template, error) {
	tmpl, err := template.New("summary").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}

	instructions, err := FormatInstructions()
	if err != nil {
		return nil, err
	}

	return &Template{tmpl: tmpl, formatInstructions: instructions}, nil
}

// Format renders the prompt for a page text
func (t *Template) Format(document string) (string, error) {
	var buf bytes.Buffer
	err := t.tmpl.Execute(&buf, Data{
		InputLanguage:      Language,
		OutputLanguage:     Language,
		FormatInstructions: t.formatInstructions,
		Document:           document,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// FormatInstructions describes the expected JSON reply using the SummaryResult schema
func FormatInstructions() (string, error) {
	schema, err := Schema()
	if err != nil {
		return "", err
	}

	return "The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n" +
		`As an example, for the schema {"properties": {"foo": {"description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}` + "\n" +
		`the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.` + "\n\n" +
		"Here is the output schema:\n```\n" + schema + "\n```", nil
}

// Schema returns the JSON schema of SummaryResult
func Schema() (string, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
		ExpandedStruct: true,
	}

	schema := reflector.Reflect(&model.SummaryResult{})
	schema.Version = ""

	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("marshaling schema: %w", err)
	}
	return string(data), nil
}
