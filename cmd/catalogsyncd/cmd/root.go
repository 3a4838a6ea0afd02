package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   string
	buildTime string
	gitCommit string

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "catalogsyncd",
	Short: "Local-first catalog synchronization engine",
	Long: `catalogsyncd keeps a local SQLite catalog store reconciled against a
remote commerce catalog: items, variations, categories, taxes, discounts,
modifiers, modifier lists, images, and inventory counts.

Examples:
  # Run one sync cycle and exit
  catalogsyncd sync --config catalogsync.yaml

  # Run the scheduler, syncing on a timer until interrupted
  catalogsyncd serve --config catalogsync.yaml`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion records build metadata for the version command.
func SetVersion(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (optional; defaults and env vars apply otherwise)")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("catalogsyncd %s (commit %s, built %s)\n", version, gitCommit, buildTime)
	},
}
