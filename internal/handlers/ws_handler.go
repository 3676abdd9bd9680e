package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SubscriptionServer upgrades a request to a websocket subscribed on behalf
// of userID.
type SubscriptionServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

// WebSocketHandler serves push notifications.
type WebSocketHandler struct {
	hub SubscriptionServer
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub SubscriptionServer) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Serve upgrades the connection. Clients subscribe by sending
// {"action":"subscribe","topic":"user:{id}"} frames.
// @Summary     Push notifications
// @Description Websocket carrying analytics.updated, analytics.narrated and transaction.recommendation events
// @Tags        realtime
// @Security    BearerAuth
// @Param       token query string false "Access token for clients that cannot set headers"
// @Success     101 "Switching protocols"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /ws [get]
func (h *WebSocketHandler) Serve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.hub.Serve(c.Writer, c.Request, userID)
}
