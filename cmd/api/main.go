package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/config"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/database"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/server"
)

// @title           Budget Analytics API
// @version         1.0
// @description     Budget cycles, transactions and per-user behavioral analytics with narrated insights and purchase recommendations.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Pipeline API key for service-to-service endpoints.

func main() {
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, dbManager.DB())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job workers: %w", err)
	}

	go sweepCycles(ctx, app, cfg.CycleSweepInterval)

	// No write timeout: websocket connections are long-lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.NewRouter(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting budget analytics server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Errorf("Error draining job queue: %v", err)
	}
	return nil
}

// sweepCycles marks cycles whose end date has passed as completed.
func sweepCycles(ctx context.Context, app *server.App, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log := logger.Named("sweeper")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			users, err := app.Services.Cycles.CompleteExpiredCycles(now.UTC())
			if err != nil {
				log.Errorw("Cycle sweep failed", "error", err)
				continue
			}
			if len(users) > 0 {
				log.Infow("Completed expired cycles", "users", len(users))
			}
		}
	}
}
