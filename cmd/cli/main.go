package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/pep299/company-summarizer/internal/application"
	"github.com/pep299/company-summarizer/internal/config"
	"github.com/pep299/company-summarizer/internal/logging"
	"github.com/pep299/company-summarizer/internal/model"
	"github.com/pep299/company-summarizer/internal/prompt"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "company-summarizer",
		Usage:   "Company Summarizer CLI",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "Summarize the company website at URL",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "output format: json or yaml"},
					&cli.BoolFlag{Name: "slack", Usage: "post the summary to the configured Slack channel"},
				},
				Action: summarizeAction,
			},
			{
				Name:  "cache",
				Usage: "Inspect or clear the summary cache",
				Subcommands: []*cli.Command{
					{Name: "stats", Usage: "Print cache statistics", Action: cacheStatsAction},
					{Name: "clear", Usage: "Remove every cached summary", Action: cacheClearAction},
					{Name: "cleanup", Usage: "Remove expired cached summaries", Action: cacheCleanupAction},
				},
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema the model must follow",
				Action: func(c *cli.Context) error {
					schema, err := prompt.Schema()
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, schema)
					return nil
				},
			},
		},
	}
}

// openApplication loads configuration and builds the application for one command
func openApplication(ctx context.Context) (*application.Application, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, logFile, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Stderr: cfg.LogStderr,
	})
	if err != nil {
		return nil, nil, err
	}

	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, nil, fmt.Errorf("creating application: %w", err)
	}

	closeAll := func() {
		app.Close()
		logFile.Close()
	}
	return app, closeAll, nil
}

func summarizeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one URL", 1)
	}

	input := model.URLInput{URL: c.Args().First()}
	if err := input.Validate(); err != nil {
		return cli.Exit("Invalid URL", 1)
	}

	format := c.String("format")
	if format != "json" && format != "yaml" {
		return cli.Exit(fmt.Sprintf("unsupported format: %s", format), 1)
	}

	app, closeAll, err := openApplication(c.Context)
	if err != nil {
		return err
	}
	defer closeAll()

	app.Logger.Infof("Received URL: %s", input.URL)
	summary, err := app.Summarizer.GetSummary(c.Context, input.URL)
	if err != nil {
		app.Logger.Errorf("Exception during processing URL: %s - %v", input.URL, err)
		return fmt.Errorf("Model failed to process URL: %w", err)
	}
	app.Logger.Infof("Successfully summarized URL: %s", input.URL)

	if err := writeSummary(c.App.Writer, summary, format); err != nil {
		return err
	}

	if c.Bool("slack") {
		if app.Slack == nil {
			return cli.Exit("SLACK_BOT_TOKEN is not set", 1)
		}
		if err := app.Slack.SendSummary(c.Context, input.URL, summary); err != nil {
			return fmt.Errorf("posting to Slack: %w", err)
		}
	}

	return nil
}

func cacheStatsAction(c *cli.Context) error {
	app, closeAll, err := openApplication(c.Context)
	if err != nil {
		return err
	}
	defer closeAll()

	if app.Cache == nil {
		return cli.Exit("caching is disabled", 1)
	}

	stats, err := app.Cache.GetStats(c.Context)
	if err != nil {
		return fmt.Errorf("getting cache stats: %w", err)
	}

	encoder := json.NewEncoder(c.App.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stats)
}

func cacheClearAction(c *cli.Context) error {
	app, closeAll, err := openApplication(c.Context)
	if err != nil {
		return err
	}
	defer closeAll()

	if app.Cache == nil {
		return cli.Exit("caching is disabled", 1)
	}

	if err := app.Cache.Clear(c.Context); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "Cache cleared successfully")
	return nil
}

func cacheCleanupAction(c *cli.Context) error {
	app, closeAll, err := openApplication(c.Context)
	if err != nil {
		return err
	}
	defer closeAll()

	if app.Cache == nil {
		return cli.Exit("caching is disabled", 1)
	}

	removed, err := app.Cache.Cleanup(c.Context)
	if err != nil {
		return fmt.Errorf("cleaning up cache: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Removed %d expired cache entries\n", removed)
	return nil
}

// summaryView flattens the response for YAML output
type summaryView struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	ProofPoints []string `yaml:"proof_points"`
	PainPoints  []string `yaml:"pain_points"`
	FullSummary string   `yaml:"full_summary"`
}

// writeSummary prints summary in the requested format
func writeSummary(w io.Writer, summary *model.SummaryResultResponse, format string) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(summaryView{
			Name:        summary.Name,
			Description: summary.Description,
			ProofPoints: summary.ProofPoints,
			PainPoints:  summary.PainPoints,
			FullSummary: summary.FullSummary,
		})
	default:
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}
}
