package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

// PipelineHandler serves the machine-to-machine endpoints used by the
// identity sync and scheduled jobs.
type PipelineHandler struct {
	userService      services.UserServicer
	cycleService     services.CycleServicer
	analyticsService services.AnalyticsServicer
	auditService     services.AuditServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(
	userService services.UserServicer,
	cycleService services.CycleServicer,
	analyticsService services.AnalyticsServicer,
	auditService services.AuditServicer,
) *PipelineHandler {
	return &PipelineHandler{
		userService:      userService,
		cycleService:     cycleService,
		analyticsService: analyticsService,
		auditService:     auditService,
	}
}

// UpsertUserRequest mirrors a user from the identity provider.
type UpsertUserRequest struct {
	ID           string `json:"id" binding:"required,max=64"`
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name" binding:"max=200"`
	BaseCurrency string `json:"base_currency" binding:"omitempty,iso4217"`
}

// UpsertUser creates or updates a user.
// @Summary     Sync a user
// @Description Create or update the local projection of an identity-provider user
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body UpsertUserRequest true "User"
// @Success     200 {object} models.User "User"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/users [post]
func (h *PipelineHandler) UpsertUser(c *gin.Context) {
	var req UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpsertUser(req.ID, req.Email, req.Name, req.BaseCurrency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "SYNC_USER", "user", user.ID, c.ClientIP(),
		map[string]interface{}{"email": user.Email, "base_currency": user.BaseCurrency})

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RefreshAll schedules a refresh of every user's analytics.
// @Summary     Refresh all analytics
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     202 {object} map[string]int "Users scheduled"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/analytics/refresh [post]
func (h *PipelineHandler) RefreshAll(c *gin.Context) {
	count, err := h.analyticsService.RefreshAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"scheduled": count})
}

// CompleteExpiredCycles closes every active cycle past its end date.
// @Summary     Complete expired cycles
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} map[string]interface{} "Affected users"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/cycles/complete [post]
func (h *PipelineHandler) CompleteExpiredCycles(c *gin.Context) {
	users, err := h.cycleService.CompleteExpiredCycles(time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
