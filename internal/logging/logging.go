package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"
)

// Header renders lines as "<timestamp> - <LEVEL> - <message>"
const Header = "${time_rfc3339} - ${level} -"

// Logger is the subset of the leveled logger the application depends on
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Options configures the application logger
type Options struct {
	File   string
	Level  string
	Stderr bool
}

// New opens the log file in append mode and returns a logger writing to it.
// The returned closer releases the file.
func New(opts Options) (*log.Logger, io.Closer, error) {
	if dir := filepath.Dir(opts.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var out io.Writer = file
	if opts.Stderr {
		out = io.MultiWriter(file, os.Stderr)
	}

	return NewWriter(out, opts.Level), file, nil
}

// NewWriter returns a logger writing plain lines to w
func NewWriter(w io.Writer, level string) *log.Logger {
	logger := log.New("company-summarizer")
	logger.SetHeader(Header)
	logger.SetOutput(w)
	logger.DisableColor()
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps a level name to a gommon level, defaulting to INFO
func ParseLevel(level string) log.Lvl {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return log.DEBUG
	case "WARN", "WARNING":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}

// Discard returns a logger that drops every line
func Discard() *log.Logger {
	return NewWriter(io.Discard, "OFF")
}
