package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/middleware"
)

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// pathID returns a non-blank path parameter.
func pathID(c *gin.Context, param string) (string, error) {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// queueError maps job queue failures onto API errors.
func queueError(err error) error {
	switch {
	case errors.Is(err, jobs.ErrFull):
		return apperrors.ErrQueueFull
	case errors.Is(err, jobs.ErrClosed):
		return apperrors.ErrQueueClosed
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// parseFlexibleTime accepts RFC 3339 timestamps and bare dates.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("date must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}
