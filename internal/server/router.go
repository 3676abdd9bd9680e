package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/docs" // swagger spec
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/handlers"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/middleware"
)

// NewRouter registers every route of the API on a new engine.
func (a *App) NewRouter() *gin.Engine {
	s := a.Services

	profileHandler := handlers.NewProfileHandler(s.Users, s.Audit)
	cycleHandler := handlers.NewCycleHandler(s.Cycles, s.Transactions, s.Audit)
	transactionHandler := handlers.NewTransactionHandler(s.Transactions, s.Audit, a.Queue)
	analyticsHandler := handlers.NewAnalyticsHandler(s.Analytics, s.Narratives)
	pipelineHandler := handlers.NewPipelineHandler(s.Users, s.Cycles, s.Analytics, s.Audit)
	wsHandler := handlers.NewWebSocketHandler(a.Hub)

	var pinger handlers.Pinger
	if sqlDB, err := a.DB.DB(); err == nil {
		pinger = sqlDB
	}
	healthHandler := handlers.NewHealthHandler(pinger, a.Rates, a.Queue)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", healthHandler.Health)

	v1 := router.Group("/api/v1")

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", profileHandler.GetProfile)
	protected.PUT("/profile/currency", profileHandler.UpdateCurrency)

	cycles := protected.Group("/cycles")
	cycles.POST("", cycleHandler.CreateCycle)
	cycles.GET("", cycleHandler.GetCycles)
	cycles.GET("/:id", cycleHandler.GetCycle)
	cycles.PUT("/:id", cycleHandler.UpdateCycle)
	cycles.GET("/:id/transactions", cycleHandler.GetCycleTransactions)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PUT("/:id/decision", transactionHandler.RecordDecision)
	transactions.POST("/:id/recommendation", transactionHandler.RequestRecommendation)

	analyticsRoutes := protected.Group("/analytics")
	analyticsRoutes.GET("", analyticsHandler.GetAnalytics)
	analyticsRoutes.POST("/refresh", analyticsHandler.RefreshAnalytics)
	analyticsRoutes.POST("/narrative", analyticsHandler.GenerateNarrative)

	protected.GET("/ws", wsHandler.Serve)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(middleware.ParseAPIKeys(a.Config.PipelineAPIKey)))
	pipeline.POST("/users", pipelineHandler.UpsertUser)
	pipeline.POST("/analytics/refresh", pipelineHandler.RefreshAll)
	pipeline.POST("/cycles/complete", pipelineHandler.CompleteExpiredCycles)

	return router
}
