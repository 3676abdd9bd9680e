package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/cli"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild a user's analytics snapshot now",
	RunE:  runRecompute,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show the stored analytics snapshot for a user",
	RunE:  runSnapshot,
}

func init() {
	for _, c := range []*cobra.Command{recomputeCmd, snapshotCmd} {
		c.Flags().StringVarP(&flagUser, "user", "u", "", "user ID")
		c.Flags().StringVarP(&flagCategory, "category", "c", "", "limit to one spending category")
		c.PreRunE = requireUser
		rootCmd.AddCommand(c)
	}
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := app.Services.Analytics.Refresh(ctx, flagUser, flagCategory)
	if err != nil {
		return fmt.Errorf("recompute analytics: %w", err)
	}

	fmt.Println(cli.RenderSnapshot(snap.View()))
	return nil
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	app, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := app.Services.Analytics.GetSnapshot(flagUser, flagCategory)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	fmt.Println(cli.RenderSnapshot(snap.View()))
	return nil
}
