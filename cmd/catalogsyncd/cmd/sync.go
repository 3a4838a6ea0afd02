package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimbuscommerce/catalogsync/pkg/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync cycle and exit",
	Long: `sync performs exactly one perform_sync invocation: full if no prior
full sync has completed within the configured interval, incremental
otherwise. Exits non-zero if the sync fails.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := logger.WithSyncID(cmd.Context(), logger.GenerateSyncID())

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log := logger.FromContext(ctx, a.logger)
	log.Info("starting sync")

	result, err := a.engine.PerformSync(ctx)
	if err != nil {
		log.Error("sync failed", "error", err)
		return fmt.Errorf("perform sync: %w", err)
	}

	log.Info("sync completed",
		"mode", result.Mode,
		"processed", result.Counters.Processed,
		"inserted", result.Counters.Inserted,
		"updated", result.Counters.Updated,
		"deleted", result.Counters.Deleted,
		"skipped", result.Counters.Skipped,
		"errors", len(result.Counters.Errors),
	)
	return nil
}
