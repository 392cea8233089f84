package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentflow/dedupe/internal/app"
	"github.com/talentflow/dedupe/internal/config"
	"github.com/talentflow/dedupe/internal/debug"
)

var (
	opts     app.Options
	logLevel string
	logFile  string
	logger   *slog.Logger
	closeLog func() error
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	opts = app.OptionsFromEnv()

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Candidate duplicate detection and merge",
		Long:  `Finds duplicate candidate records by weighted multi-field similarity and merges them with field-level conflict resolution`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger, closeLog = config.SetupLogger(logFile, config.ParseLevel(logLevel))
			slog.SetDefault(logger)
			debug.SetLogger(logger)
			opts.Logger = logger
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLog != nil {
				closeLog()
			}
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.Driver, "db-driver", opts.Driver, "database driver: postgres or sqlite3")
	flags.StringVar(&opts.DSN, "db-url", opts.DSN, "database connection string")
	flags.StringVarP(&opts.File, "file", "f", opts.File, "use a JSON candidates file instead of a database")
	flags.StringVarP(&opts.DetectionConfig, "config", "c", opts.DetectionConfig, "detection config YAML")
	flags.BoolVar(&opts.Debug, "debug", opts.Debug, "trace every comparison")
	flags.StringVar(&logLevel, "log-level", config.GetEnv("DEDUPE_LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", config.GetEnv("DEDUPE_LOG_FILE", ""), "also write JSON logs to this file")

	// Add subcommands
	rootCmd.AddCommand(createCheckCmd())
	rootCmd.AddCommand(createGroupsCmd())
	rootCmd.AddCommand(createMergeCmd())
	rootCmd.AddCommand(createImportCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createConfigCmd())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withBackend opens the configured backend for the duration of fn
func withBackend(ctx context.Context, fn func(*app.Backend) error) error {
	b, err := app.Open(ctx, opts)
	if err != nil {
		return err
	}
	runErr := fn(b)
	if err := b.Close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
