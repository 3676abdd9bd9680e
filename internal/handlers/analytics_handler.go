package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

// AnalyticsHandler serves behavioral analytics snapshots.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	narrativeService services.NarrativeServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer, narrativeService services.NarrativeServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, narrativeService: narrativeService}
}

// AnalyticsScopeRequest selects the overall snapshot or one category.
type AnalyticsScopeRequest struct {
	Category string `json:"category" binding:"omitempty,spend_category"`
}

// GetAnalytics returns the stored snapshot.
// @Summary     Get analytics
// @Description Get the stored analytics snapshot, overall or for one category
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       category query string false "Spending category"
// @Success     200 {object} models.SnapshotView "Snapshot"
// @Failure     400 {object} ErrorResponse "Unknown category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not computed yet"
// @Router      /analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.analyticsService.GetSnapshot(userID, c.Query("category"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": snapshot.View()})
}

// RefreshAnalytics recomputes the snapshot synchronously.
// @Summary     Refresh analytics
// @Description Recompute the analytics snapshot now
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AnalyticsScopeRequest false "Scope"
// @Success     200 {object} models.SnapshotView "Snapshot"
// @Failure     400 {object} ErrorResponse "Unknown category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /analytics/refresh [post]
func (h *AnalyticsHandler) RefreshAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	req, err := bindScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.analyticsService.Refresh(c.Request.Context(), userID, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": snapshot.View()})
}

// GenerateNarrative summarizes the stored snapshot in prose.
// @Summary     Generate narrative
// @Description Generate the narrative summary of the stored snapshot
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AnalyticsScopeRequest false "Scope"
// @Success     200 {object} models.SnapshotView "Snapshot with narrative"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not computed yet"
// @Failure     502 {object} ErrorResponse "Completion failed"
// @Failure     503 {object} ErrorResponse "Completion not configured"
// @Router      /analytics/narrative [post]
func (h *AnalyticsHandler) GenerateNarrative(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	req, err := bindScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.narrativeService.Narrate(c.Request.Context(), userID, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": snapshot.View()})
}

// bindScope accepts an empty body as the overall scope.
func bindScope(c *gin.Context) (AnalyticsScopeRequest, error) {
	var req AnalyticsScopeRequest
	if c.Request.ContentLength == 0 {
		return req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return req, nil
}
