package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSchema(t *testing.T) {
	schema, err := Schema()
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}

	var parsed struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
			MinItems    *int   `json:"minItems"`
			MaxItems    *int   `json:"maxItems"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		t.Fatalf("Failed to parse schema: %v", err)
	}

	for _, field := range []string{"name", "description", "proof_points", "pain_points"} {
		property, ok := parsed.Properties[field]
		if !ok {
			t.Errorf("Expected property '%s' in schema", field)
			continue
		}
		if property.Description == "" {
			t.Errorf("Expected description for '%s'", field)
		}
	}

	for _, field := range []string{"proof_points", "pain_points"} {
		property := parsed.Properties[field]
		if property.Type != "array" {
			t.Errorf("Expected '%s' to be an array, got '%s'", field, property.Type)
		}
		if property.MinItems == nil || *property.MinItems != 5 || property.MaxItems == nil || *property.MaxItems != 5 {
			t.Errorf("Expected '%s' to require exactly 5 items", field)
		}
	}

	if len(parsed.Required) != 4 {
		t.Errorf("Expected 4 required fields, got %v", parsed.Required)
	}
}

func TestFormatIncludesVariables(t *testing.T) {
	tmpl, err := New()
	if err != nil {
		t.Fatalf("Failed to load template: %v", err)
	}

	result, err := tmpl.Format("Acme makes widgets")
	if err != nil {
		t.Fatalf("Failed to format prompt: %v", err)
	}

	for _, want := range []string{"Acme makes widgets", Language, "proof_points", "Here is the output schema"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected prompt to contain '%s'", want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	content := "{{.InputLanguage}}->{{.OutputLanguage}}: {{.Document}}"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	tmpl, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load template: %v", err)
	}

	result, err := tmpl.Format("doc")
	if err != nil {
		t.Fatalf("Failed to format prompt: %v", err)
	}

	expected := "Russian->Russian: doc"
	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.tmpl")); err == nil {
		t.Error("Expected error for missing file")
	}

	if _, err := Parse("{{.Document"); err == nil {
		t.Error("Expected error for malformed template")
	}

	tmpl, err := Parse("{{.Unknown}}")
	if err != nil {
		t.Fatalf("Failed to parse template: %v", err)
	}
	if _, err := tmpl.Format("doc"); err == nil {
		t.Error("Expected error for unknown field")
	}
}
