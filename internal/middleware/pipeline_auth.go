package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
)

// ParseAPIKeys splits a comma-separated key list, dropping blanks. Listing
// the old and new key together allows rotation without downtime.
func ParseAPIKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// PipelineAuthMiddleware validates the X-API-Key header against the
// configured pipeline keys.
func PipelineAuthMiddleware(apiKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(apiKeys) == 0 {
			WriteError(c, apperrors.ErrPipelineNotConfigured)
			c.Abort()
			return
		}

		key := []byte(c.GetHeader("X-API-Key"))
		matched := 0
		for _, k := range apiKeys {
			matched |= subtle.ConstantTimeCompare(key, []byte(k))
		}
		if len(key) == 0 || matched != 1 {
			WriteError(c, apperrors.ErrInvalidAPIKey)
			c.Abort()
			return
		}
		c.Next()
	}
}
