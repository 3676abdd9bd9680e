package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/cli"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Complete cycles past their end date and recompute affected users",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	users, err := app.Services.Cycles.CompleteExpiredCycles(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete expired cycles: %w", err)
	}

	// Workers are not running here, so refresh inline.
	failed := 0
	for _, id := range users {
		if _, err := app.Services.Analytics.Refresh(ctx, id, ""); err != nil {
			failed++
			logger.Named("sweep").Warnw("Refresh failed", "user_id", id, "error", err)
		}
	}

	fmt.Println(cli.RenderStatus(failed == 0, fmt.Sprintf("%d user(s) had expired cycles, %d refresh failure(s)", len(users), failed)))
	return nil
}
