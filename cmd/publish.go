package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usefultools/curator/internal/pipeline"
	"github.com/usefultools/curator/internal/store"
	"github.com/usefultools/curator/internal/telegram"
)

// newPublishCmd creates the 'publish' subcommand: posts at most one pending
// item per run.
func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Posts one pending item to the channel",
		Long: `Selects exactly one pending item from the log, sends it to the
configured channel, and marks it posted only after the send succeeds. A
failed send aborts without rewriting the log, so the run is retryable
without double-posting.`,
		RunE: runPublishCommand,
	}
}

func runPublishCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := app.Config
	if err := cfg.ValidatePublish(); err != nil {
		return err
	}

	logStore, err := store.NewJSONLStore(cfg.Log.Path, app.Logger.Named("store"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.HTTP.Timeout())
	if err != nil {
		return fmt.Errorf("init telegram client: %w", err)
	}

	publisher, err := pipeline.NewPublisher(pipeline.PublisherDeps{
		Store:     logStore,
		Sender:    tg,
		ChannelID: cfg.Telegram.ChannelID,
		Logger:    app.Logger.Named("publish"),
	})
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}

	if _, err := publisher.Run(cmd.Context()); err != nil {
		return fmt.Errorf("publish run: %w", err)
	}
	return nil
}
