package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	jobs               jobs.Publisher
}

// NewTransactionHandler creates a new TransactionHandler. Recommendations
// are generated in the background through publisher.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer, publisher jobs.Publisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
		jobs:               publisher,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	CycleID                      string           `json:"cycle_id" binding:"required"`
	Description                  string           `json:"description" binding:"max=500"`
	Category                     string           `json:"category" binding:"required,spend_category"`
	Amount                       *decimal.Decimal `json:"amount" binding:"required"`
	Currency                     string           `json:"currency" binding:"omitempty,iso4217"`
	Date                         *string          `json:"date"`
	PerformedAfterRecommendation string           `json:"performed_after_recommendation" binding:"omitempty,yes_no"`
	RequestRecommendation        bool             `json:"request_recommendation"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Category    *string          `json:"category" binding:"omitempty,spend_category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
}

// DecisionRequest records whether the user went ahead with a purchase.
type DecisionRequest struct {
	PerformedAfterRecommendation string `json:"performed_after_recommendation" binding:"required,yes_no"`
}

// CreateTransaction handles recording a purchase against a cycle.
// @Summary     Create a transaction
// @Description Record a purchase against an active cycle; optionally request a recommendation
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     409 {object} ErrorResponse "Cycle completed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.TransactionInput{
		CycleID:                      req.CycleID,
		Description:                  req.Description,
		Category:                     models.Category(req.Category),
		Amount:                       *req.Amount,
		Currency:                     req.Currency,
		PerformedAfterRecommendation: strings.EqualFold(req.PerformedAfterRecommendation, models.PerformedYes),
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		in.Date = parsed
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{
			"cycle_id": txn.CycleID,
			"category": txn.Category,
			"amount":   txn.Amount.String(),
			"currency": txn.Currency,
		})

	resp := gin.H{"transaction": txn}
	if req.RequestRecommendation {
		if err := h.enqueueRecommendation(c, userID, txn.ID); err != nil {
			logger.Get().Warnw("failed to schedule recommendation",
				"user_id", userID,
				"transaction_id", txn.ID,
				"error", err,
			)
			resp["recommendation_scheduled"] = false
		} else {
			resp["recommendation_scheduled"] = true
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTransaction handles fetching a single transaction.
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// UpdateTransaction handles editing a transaction.
// @Summary     Update a transaction
// @Description Edit a transaction; amount and category changes move the spend between cycle totals
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.TransactionUpdate{
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.Category != nil {
		category := models.Category(*req.Category)
		in.Category = &category
	}
	if in.Date, err = optionalDate(req.Date, "date"); err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Category != nil {
		changes["category"] = txn.Category
	}
	if req.Amount != nil {
		changes["amount"] = req.Amount.String()
	}
	if in.Date != nil {
		changes["date"] = in.Date
	}
	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// DeleteTransaction handles removing a transaction.
// @Summary     Delete a transaction
// @Description Delete a transaction and release its amount from the cycle totals
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// RecordDecision stores whether the user went ahead with the purchase.
// @Summary     Record purchase decision
// @Description Mark whether the purchase was performed after the recommendation
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Transaction ID"
// @Param       request body DecisionRequest true "Decision"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/decision [put]
func (h *TransactionHandler) RecordDecision(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	performed := strings.EqualFold(req.PerformedAfterRecommendation, models.PerformedYes)
	txn, err := h.transactionService.SetPerformedAfterRecommendation(userID, transactionID, performed)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECORD_DECISION", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"performed_after_recommendation": txn.PerformedAfterRecommendation})

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// RequestRecommendation schedules a purchase recommendation.
// @Summary     Request a recommendation
// @Description Generate an approve/delay/reconsider verdict in the background; the result is pushed on the transaction's websocket topic
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     202 {object} map[string]string "Recommendation scheduled"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Queue full"
// @Router      /transactions/{id}/recommendation [post]
func (h *TransactionHandler) RequestRecommendation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.transactionService.GetTransactionByID(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.enqueueRecommendation(c, userID, transactionID); err != nil {
		respondWithError(c, queueError(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        "Recommendation scheduled",
		"transaction_id": transactionID,
	})
}

func (h *TransactionHandler) enqueueRecommendation(c *gin.Context, userID, transactionID string) error {
	return h.jobs.Publish(c.Request.Context(), jobs.Job{
		Kind:          jobs.KindRecommend,
		UserID:        userID,
		TransactionID: transactionID,
	})
}
