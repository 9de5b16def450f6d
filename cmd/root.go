// Package cmd defines and implements the CLI commands for the curator
// executable. Each driver is a standalone subcommand with no flags of its
// own; all configuration arrives via CURATOR_* environment variables.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/config"
	"github.com/usefultools/curator/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services every subcommand needs. Tests can inject a mock
// through the factory variable below.
type App struct {
	Config config.Config
	Logger *zap.Logger
}

// newApp is the application factory; a variable so tests can replace it.
var newApp = func() (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &App{Config: cfg, Logger: logger}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Curates useful web tool links from chat and issue submissions.",
		Long: `curator maintains an append-only JSONL log of curated web tool links.
Its drivers are run one at a time by an external scheduler: "ingest" polls
the messaging inbox, "publish" posts one pending item to the channel, and
"issues" turns labeled intake issues into enriched, publish-ready items.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp()
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey).(*App); ok && app != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (env vars win)")

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newIssuesCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey).(*App)
	if !ok || app == nil {
		return nil, errors.New("application services not initialized")
	}
	return app, nil
}

// Execute is the main entry point. A fatal precondition or a failed required
// side effect surfaces here and exits non-zero.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "curator: %v\n", err)
		os.Exit(1)
	}
}
