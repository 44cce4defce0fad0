package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/inovacc/juli/internal/application"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect juli configuration",
	Long: `Commands for inspecting juli configuration.

Configuration is read from config.yaml in the data directory, JULI_*
environment variables and command-line flags, in increasing precedence.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configShowJSON bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "Print as JSON")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	identity, err := application.LoadIdentity(cfg.Manifest)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if configShowJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(map[string]any{
			"config":   cfg,
			"identity": identity,
		})
	}

	_, _ = fmt.Fprintln(out, "Configuration:")
	_, _ = fmt.Fprintf(out, "  Data directory:   %s\n", cfg.DataDir)
	_, _ = fmt.Fprintf(out, "  Backend:          %s\n", cfg.Backend)
	_, _ = fmt.Fprintf(out, "  Manifest:         %s\n", cfg.Manifest)
	_, _ = fmt.Fprintf(out, "  Log level:        %s\n", cfg.LogLevel)
	_, _ = fmt.Fprintf(out, "  Listen:           %s\n", cfg.Listen)
	_, _ = fmt.Fprintf(out, "  Download timeout: %s\n", cfg.DownloadTimeout)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Product:")
	_, _ = fmt.Fprintf(out, "  ID:   %s\n", identity.ID)
	_, _ = fmt.Fprintf(out, "  Name: %s\n", identity.Name)

	if identity.SingleURL() {
		_, _ = fmt.Fprintf(out, "  URL:  %s\n", identity.URL)
	}

	return nil
}
