// Package server assembles the services and HTTP router of the budget
// analytics API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/completion"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/config"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/notify"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

// Services bundles the business services the HTTP layer depends on.
type Services struct {
	Users           services.UserServicer
	Cycles          services.CycleServicer
	Transactions    services.TransactionServicer
	Analytics       services.AnalyticsServicer
	Narratives      services.NarrativeServicer
	Recommendations services.RecommendationServicer
	Audit           services.AuditServicer
}

// App is the fully wired application.
type App struct {
	Config     *config.Config
	DB         *gorm.DB
	Rates      *currency.RateCache
	Converter  *currency.Converter
	Thresholds *analytics.ThresholdCache
	Queue      *jobs.Queue
	Hub        *notify.Hub
	Services   Services

	handler jobs.Handler
}

// Option customizes New.
type Option func(*buildOptions)

type buildOptions struct {
	fetcher   currency.TableFetcher
	completer completion.Completer
}

// WithRateFetcher replaces the HTTP rate API client.
func WithRateFetcher(f currency.TableFetcher) Option {
	return func(o *buildOptions) { o.fetcher = f }
}

// WithCompleter replaces the completer selected by configuration.
func WithCompleter(c completion.Completer) Option {
	return func(o *buildOptions) { o.completer = c }
}

// New wires every component on top of db. The job queue is not started.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, opts ...Option) (*App, error) {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = currency.NewRatesClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.RatesAPIURL)
	}
	if o.completer == nil {
		c, err := completion.FromConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create completer: %w", err)
		}
		o.completer = c
	}

	rates := currency.NewRateCache(o.fetcher, cfg.RateCacheTTL, currency.WithStore(services.NewRateStore(db)))
	conv := currency.NewConverter(rates)

	profiles, err := currency.LoadProfiles(cfg.CurrencyProfilesPath)
	if err != nil {
		return nil, err
	}
	thresholds, err := analytics.NewThresholdCache(conv, profiles.MaxIncomes(), cfg.ThresholdCacheTTL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		Rates:      rates,
		Converter:  conv,
		Thresholds: thresholds,
		Queue:      jobs.NewQueue(cfg.AnalyticsWorkers, cfg.AnalyticsQueueSize),
	}
	app.Hub = notify.NewHub(app.authorizeTopic)

	trigger := services.NewJobTrigger(app.Queue)
	userService := services.NewUserService(db, trigger)
	cycleService := services.NewCycleService(db, userService, trigger)
	transactionService := services.NewTransactionService(db, cycleService, conv, trigger)
	analyticsService := services.NewAnalyticsService(db, analytics.NewBuilder(conv, thresholds), userService, app.Hub, trigger)
	narrativeService := services.NewNarrativeService(db, analyticsService, o.completer, app.Hub)
	recommendationService := services.NewRecommendationService(transactionService, cycleService, o.completer, app.Hub)

	app.Services = Services{
		Users:           userService,
		Cycles:          cycleService,
		Transactions:    transactionService,
		Analytics:       analyticsService,
		Narratives:      narrativeService,
		Recommendations: recommendationService,
		Audit:           services.NewAuditService(db),
	}
	app.handler = services.NewJobHandler(analyticsService, narrativeService, recommendationService, app.Queue)

	if !narrativeService.Enabled() {
		logger.Named("server").Infow("Text completion disabled; narratives and recommendations are unavailable")
	}
	return app, nil
}

// Start runs the job workers until ctx is cancelled or Close is called.
func (a *App) Start(ctx context.Context) error {
	return a.Queue.Start(ctx, a.handler)
}

// RunJob processes job on the caller's goroutine, bypassing the queue.
func (a *App) RunJob(ctx context.Context, job jobs.Job) error {
	return a.handler(ctx, job)
}

// Close drains the queue and releases caches.
func (a *App) Close(ctx context.Context) error {
	err := a.Queue.Stop(ctx)
	a.Thresholds.Close()
	return err
}

// authorizeTopic lets a user follow the transaction topics of their own
// transactions.
func (a *App) authorizeTopic(userID, topic string) bool {
	id, ok := strings.CutPrefix(topic, notify.TransactionTopic(""))
	if !ok || id == "" || a.Services.Transactions == nil {
		return false
	}
	_, err := a.Services.Transactions.GetTransactionByID(userID, id)
	return err == nil
}
