package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/config"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/database"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/server"
)

var (
	flagUser     string
	flagCategory string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "budgetctl",
	Short: "Budget analytics operator CLI",
	Long:  "Recompute and inspect behavioral analytics, check exchange rates, sweep expired cycles and mint development tokens.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := os.Getenv("LOG_LEVEL")
		if flagQuiet {
			level = "error"
		}
		logger.Init(os.Getenv("ENV"), level)
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log errors")
}

// openApp connects to the database and wires the services without
// starting the job workers. Jobs published by services are dropped when
// the returned cleanup drains the queue.
func openApp(ctx context.Context) (*server.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	mgr, err := database.NewManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := mgr.RunMigrations(); err != nil {
		_ = mgr.Close()
		return nil, nil, err
	}

	app, err := server.New(ctx, cfg, mgr.DB())
	if err != nil {
		_ = mgr.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = app.Close(context.Background())
		_ = mgr.Close()
	}
	return app, cleanup, nil
}

func requireUser(_ *cobra.Command, _ []string) error {
	if flagUser == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}
