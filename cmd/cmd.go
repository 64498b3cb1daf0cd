package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/suimeet/eventgraph/internal/config"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/logger/slogx"
)

var rootCmd = &cobra.Command{
	Use:  "eventgraph",
	Long: `Event graph data layer: resolves event objects, attendee tables and account identities from an object-store node and serves per-user notification feeds.`,
}

func init() {
	var configFile string

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "mainnet", "network to connect to, E.g. `mainnet`, `testnet` or `devnet`")

	// Bind flags to configuration
	config.BindPFlag("network", flags.Lookup("network"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		config := config.Parse(configFile)

		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	rootCmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Panic("Failed to execute root command", slogx.Error(err))
	}
}
