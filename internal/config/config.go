package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported LLM providers
const (
	ProviderMistral = "mistral"
	ProviderGemini  = "gemini"
)

// Supported cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheGCS    = "gcs"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `env:"PORT" envDefault:"8080" json:"port"`
	Host string `env:"HOST" envDefault:"0.0.0.0" json:"host"`

	// LLM settings
	LLMProvider    string `env:"LLM_PROVIDER" envDefault:"mistral" json:"llm_provider"`
	MistralAPIKey  string `env:"MISTRAL_API_KEY" json:"-"` // Don't expose in JSON
	MistralModel   string `env:"MISTRAL_MODEL" envDefault:"mistral-small-latest" json:"mistral_model"`
	MistralBaseURL string `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai/v1/" json:"mistral_base_url"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY" json:"-"` // Don't expose in JSON
	GeminiModel    string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash" json:"gemini_model"`

	// Page loading and extraction
	ExtractTags             []string `env:"EXTRACT_TAGS" envDefault:"span,p,li,div,a" envSeparator:"," json:"extract_tags"`
	PromptFile              string   `env:"PROMPT_FILE" json:"prompt_file"`
	FetchUserAgent          string   `env:"FETCH_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36" json:"fetch_user_agent"`
	FetchInsecureSkipVerify bool     `env:"FETCH_INSECURE_SKIP_VERIFY" envDefault:"false" json:"fetch_insecure_skip_verify"`

	// Logging
	LogFile   string `env:"LOG_FILE" envDefault:"logs/app.log" json:"log_file"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO" json:"log_level"`
	LogStderr bool   `env:"LOG_STDERR" envDefault:"false" json:"log_stderr"`

	// Cache settings
	CacheType          string `env:"CACHE_TYPE" envDefault:"none" json:"cache_type"` // "none", "memory", "sqlite" or "gcs"
	CacheDuration      int    `env:"CACHE_DURATION_HOURS" envDefault:"24" json:"cache_duration"`
	CacheCleanupSpec   string `env:"CACHE_CLEANUP_SPEC" envDefault:"@every 10m" json:"cache_cleanup_spec"`
	CacheSQLitePath    string `env:"CACHE_SQLITE_PATH" envDefault:"cache.sqlite" json:"cache_sqlite_path"`
	GCSBucket          string `env:"GCS_BUCKET" json:"gcs_bucket"`
	GCSPrefix          string `env:"GCS_PREFIX" envDefault:"summaries/" json:"gcs_prefix"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE" json:"-"`

	// Slack settings
	SlackBotToken string `env:"SLACK_BOT_TOKEN" json:"-"` // Don't expose in JSON
	SlackChannel  string `env:"SLACK_CHANNEL" envDefault:"#general" json:"slack_channel"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.ExtractTags = normalizeTags(cfg.ExtractTags)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.CacheType = strings.ToLower(strings.TrimSpace(cfg.CacheType))

	return &cfg, cfg.validate()
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderMistral:
		if c.MistralAPIKey == "" {
			return &ConfigError{Field: "MISTRAL_API_KEY", Message: "Mistral API key is required"}
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &ConfigError{Field: "GEMINI_API_KEY", Message: "Gemini API key is required"}
		}
	default:
		return &ConfigError{Field: "LLM_PROVIDER", Message: "unsupported provider: " + c.LLMProvider}
	}

	if len(c.ExtractTags) == 0 {
		return &ConfigError{Field: "EXTRACT_TAGS", Message: "at least one tag is required"}
	}

	switch c.CacheType {
	case CacheNone, CacheMemory, CacheSQLite:
	case CacheGCS:
		if c.GCSBucket == "" {
			return &ConfigError{Field: "GCS_BUCKET", Message: "bucket is required for gcs cache"}
		}
	default:
		return &ConfigError{Field: "CACHE_TYPE", Message: "unsupported cache type: " + c.CacheType}
	}

	if c.CacheType != CacheNone && c.CacheDuration <= 0 {
		return &ConfigError{Field: "CACHE_DURATION_HOURS", Message: "must be positive"}
	}

	return nil
}

// normalizeTags trims and lowercases tag names, dropping empty entries
func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.ToLower(strings.TrimSpace(tag)); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
