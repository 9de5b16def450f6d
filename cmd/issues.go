package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usefultools/curator/internal/enrich"
	"github.com/usefultools/curator/internal/github"
	"github.com/usefultools/curator/internal/pipeline"
	"github.com/usefultools/curator/internal/store"
)

// newIssuesCmd creates the 'issues' subcommand: ingests labeled intake
// issues as enriched, publish-ready items.
func newIssuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issues",
		Short: "Ingests labeled intake issues as publish-ready items",
		Long: `Lists open issues carrying the intake label, extracts the tool link
from each, enriches it with repository metadata and an optional LLM summary,
and upserts a publish-ready item. Each ingested issue is confirmed with a
comment and closed.`,
		RunE: runIssuesCommand,
	}
}

func runIssuesCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := app.Config
	if err := cfg.ValidateIssues(); err != nil {
		return err
	}

	logStore, err := store.NewJSONLStore(cfg.Log.Path, app.Logger.Named("store"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	gh, err := github.NewClient(cfg.GitHub.Token, cfg.HTTP.Timeout())
	if err != nil {
		return fmt.Errorf("init github client: %w", err)
	}

	ingestor, err := pipeline.NewIssueIngestor(pipeline.IssueIngestorDeps{
		Store:   logStore,
		Tracker: gh,
		Pages:   enrich.NewPageFetcher(cfg.HTTP.Timeout(), app.Logger.Named("enrich")),
		LLM:     llmOrNil(app),
		Repo:    cfg.GitHub.Repo,
		Label:   cfg.GitHub.Label,
		Logger:  app.Logger.Named("issues"),
	})
	if err != nil {
		return fmt.Errorf("init issue ingestor: %w", err)
	}

	if _, err := ingestor.Run(cmd.Context()); err != nil {
		return fmt.Errorf("issues run: %w", err)
	}
	return nil
}

// llmOrNil keeps a typed nil out of the Summarizer interface when no API key
// is configured.
func llmOrNil(app *App) pipeline.Summarizer {
	if c := enrich.NewLLMClient(app.Config.OpenAI, app.Logger.Named("llm")); c != nil {
		return c
	}
	return nil
}
