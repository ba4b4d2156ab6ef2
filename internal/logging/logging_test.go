package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
)

var linePattern = regexp.MustCompile(`^\S+ - (DEBUG|INFO|WARN|ERROR) - .+$`)

func TestNewWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "INFO")

	logger.Infof("Received URL: %s", "https://example.com")
	logger.Errorf("Invalid URL format: %s", "ftp://example.com")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	for _, line := range lines {
		if !linePattern.MatchString(line) {
			t.Errorf("Line does not match format: %q", line)
		}
	}

	if !strings.HasSuffix(lines[0], " - INFO - Received URL: https://example.com") {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " - ERROR - Invalid URL format: ftp://example.com") {
		t.Errorf("Unexpected second line: %q", lines[1])
	}
}

func TestNewWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "WARN")

	logger.Infof("hidden")
	logger.Warnf("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Expected INFO line to be filtered, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected WARN line, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Lvl
	}{
		{"DEBUG", log.DEBUG},
		{"info", log.INFO},
		{"warning", log.WARN},
		{" error ", log.ERROR},
		{"off", log.OFF},
		{"", log.INFO},
		{"verbose", log.INFO},
	}

	for _, test := range tests {
		if got := ParseLevel(test.input); got != test.expected {
			t.Errorf("For input '%s', expected %v, got %v", test.input, test.expected, got)
		}
	}
}

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	for i := 0; i < 2; i++ {
		logger, closer, err := New(Options{File: path, Level: "INFO"})
		if err != nil {
			t.Fatalf("Failed to create logger: %v", err)
		}
		logger.Infof("run %d", i)
		if err := closer.Close(); err != nil {
			t.Fatalf("Failed to close log file: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "run 0") || !strings.Contains(content, "run 1") {
		t.Errorf("Expected both runs in log file, got %q", content)
	}
}
