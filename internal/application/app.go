package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pep299/company-summarizer/internal/cache"
	"github.com/pep299/company-summarizer/internal/config"
	"github.com/pep299/company-summarizer/internal/handlers"
	"github.com/pep299/company-summarizer/internal/logging"
	"github.com/pep299/company-summarizer/internal/slack"
	"github.com/pep299/company-summarizer/internal/summarizer"
)

// Application represents the application with all business logic components
type Application struct {
	Config     *config.Config
	Logger     logging.Logger
	Summarizer summarizer.Summarizer
	Cache      *cache.Manager
	Slack      *slack.Client
	janitor    *cache.Janitor
	cleanup    func() error
}

// New creates a new application instance with all dependencies
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Application, error) {
	pipeline, err := summarizer.FromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating summarizer: %w", err)
	}

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Summarizer: pipeline,
	}

	// Initialize cache manager
	backend, err := cache.New(ctx, cfg)
	switch {
	case errors.Is(err, cache.ErrDisabled):
	case err != nil:
		return nil, fmt.Errorf("creating cache: %w", err)
	default:
		app.Cache = cache.NewManager(backend)
		app.Summarizer = cache.NewCachedSummarizer(pipeline, app.Cache, logger)
		app.janitor = cache.NewJanitor(ctx, app.Cache, cfg.CacheCleanupSpec, logger)
	}

	if cfg.SlackBotToken != "" {
		app.Slack = slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel)
	}

	// Cleanup function
	app.cleanup = func() error {
		if app.janitor != nil {
			app.janitor.Stop()
		}
		if app.Cache != nil {
			return app.Cache.Close()
		}
		return nil
	}

	return app, nil
}

// Start launches background cache cleanup when caching is enabled
func (a *Application) Start() error {
	if a.janitor == nil {
		return nil
	}
	return a.janitor.Start()
}

// Handler returns the HTTP routes of the service
func (a *Application) Handler() http.Handler {
	return handlers.NewServer(a.Summarizer, a.Cache, a.Logger).SetupRoutes()
}

// Close cleans up application resources
func (a *Application) Close() error {
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
