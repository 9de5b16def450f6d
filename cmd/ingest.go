package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usefultools/curator/internal/enrich"
	"github.com/usefultools/curator/internal/pipeline"
	"github.com/usefultools/curator/internal/store"
	"github.com/usefultools/curator/internal/telegram"
)

// newIngestCmd creates the 'ingest' subcommand: one poll of the messaging
// inbox for new tool links.
func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Polls the messaging inbox and records new tool links",
		Long: `Reads the poller cursor, fetches new updates from the inbox chat,
extracts tool URLs, enriches them with page metadata, and upserts one item
per link into the log. Exits successfully with a "nothing to do" summary
when no new updates exist.`,
		RunE: runIngestCommand,
	}
}

func runIngestCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := app.Config
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	logStore, err := store.NewJSONLStore(cfg.Log.Path, app.Logger.Named("store"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	cursor, err := store.NewCursor(cfg.Log.CursorPath)
	if err != nil {
		return fmt.Errorf("init cursor: %w", err)
	}
	tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.HTTP.Timeout())
	if err != nil {
		return fmt.Errorf("init telegram client: %w", err)
	}

	ingestor, err := pipeline.NewIngestor(pipeline.IngestorDeps{
		Store:       logStore,
		Cursor:      cursor,
		Source:      tg,
		Pages:       enrich.NewPageFetcher(cfg.HTTP.Timeout(), app.Logger.Named("enrich")),
		InboxChatID: cfg.Telegram.InboxChatID,
		Logger:      app.Logger.Named("ingest"),
	})
	if err != nil {
		return fmt.Errorf("init ingestor: %w", err)
	}

	if _, err := ingestor.Run(cmd.Context()); err != nil {
		return fmt.Errorf("ingest run: %w", err)
	}
	return nil
}
