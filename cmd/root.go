package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/inovacc/juli/internal/application"
	"github.com/inovacc/juli/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "A workspace manager",
	Long: `Juli keeps isolated browsing workspaces, each with its own name, order,
picture, linked account and storage partition.

Changes made from the command line are written to the settings store and,
while 'juli serve' runs, pushed to every open window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		level, err := config.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}

		cfg = loaded
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	def := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", def.DataDir, "Directory holding settings, pictures and partitions")
	flags.String("backend", def.Backend, "Settings store backend (bolt or sqlite)")
	flags.String("manifest", "", "Product identity manifest (default <data-dir>/app.ini)")
	flags.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
}
