package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/config"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/middleware"
)

var (
	flagEmail string
	flagTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Mint an access token for local testing",
	PreRunE: requireUser,
	RunE:    runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&flagUser, "user", "u", "", "user ID")
	tokenCmd.Flags().StringVar(&flagEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 0, "token lifetime (defaults to JWT_EXPIRES_IN)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ttl := flagTTL
	if ttl <= 0 {
		ttl = cfg.JWTExpirationDur
	}

	token, err := middleware.GenerateAccessToken(flagUser, flagEmail, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}
