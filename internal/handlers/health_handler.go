package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
)

// Pinger checks database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RateHealth reports how often the rate API was unavailable.
type RateHealth interface {
	Degraded() int64
}

// QueueStats reports background job counters.
type QueueStats interface {
	Stats() jobs.Stats
}

// HealthHandler reports service health.
type HealthHandler struct {
	db    Pinger
	rates RateHealth
	queue QueueStats
}

// NewHealthHandler creates a new HealthHandler. Any dependency may be nil.
func NewHealthHandler(db Pinger, rates RateHealth, queue QueueStats) *HealthHandler {
	return &HealthHandler{db: db, rates: rates, queue: queue}
}

// Health reports database reachability, rate API degradation and queue
// counters. A degraded rate API does not fail the check.
// @Summary     Health check
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Healthy"
// @Failure     503 {object} map[string]interface{} "Database unreachable"
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			body["database"] = err.Error()
		} else {
			body["database"] = "ok"
		}
	}
	if h.rates != nil {
		body["rate_api_degraded"] = h.rates.Degraded()
	}
	if h.queue != nil {
		body["jobs"] = h.queue.Stats()
	}

	c.JSON(status, body)
}
