package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/buildinfo"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	dir        string
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "montra",
		Short:   "Track wallets, loans, credit and investments",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "data directory")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default <dir>/montra.yaml)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAccountCommand(opts),
		newTxCommand(opts),
		newSnapshotCommand(opts),
		newAnalyticsCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newStorageCommand(opts),
	)

	return rootCmd
}
