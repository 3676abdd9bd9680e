package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/pagination"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

// CycleHandler handles budget cycle requests.
type CycleHandler struct {
	cycleService       services.CycleServicer
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewCycleHandler creates a new CycleHandler.
func NewCycleHandler(cycleService services.CycleServicer, transactionService services.TransactionServicer, auditService services.AuditServicer) *CycleHandler {
	return &CycleHandler{
		cycleService:       cycleService,
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// CreateCycleRequest represents the request payload for creating a budget cycle.
// Amounts are in the cycle currency, which defaults to the user's base currency.
type CreateCycleRequest struct {
	Name                 string                 `json:"name" binding:"max=100"`
	Duration             models.CycleDuration   `json:"duration" binding:"required,cycle_duration"`
	StartDate            *string                `json:"start_date"`
	EndDate              *string                `json:"end_date"`
	Currency             string                 `json:"currency" binding:"omitempty,iso4217"`
	TotalMoneyAllocation *decimal.Decimal       `json:"total_money_allocation" binding:"required"`
	SavingsTarget        *decimal.Decimal       `json:"savings_target"`
	Allocations          models.CategoryAmounts `json:"allocations"`
}

// UpdateCycleRequest represents the request payload for updating a budget cycle.
type UpdateCycleRequest struct {
	Name                 *string                `json:"name" binding:"omitempty,max=100"`
	TotalMoneyAllocation *decimal.Decimal       `json:"total_money_allocation"`
	SavingsTarget        *decimal.Decimal       `json:"savings_target"`
	Allocations          models.CategoryAmounts `json:"allocations"`
	EndDate              *string                `json:"end_date"`
}

// CreateCycle handles the creation of a new budget cycle.
// @Summary     Create a budget cycle
// @Description Create a weekly, biweekly or monthly budget cycle with per-category allocations
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCycleRequest true "Cycle details"
// @Success     201 {object} models.BudgetCycle "Cycle created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles [post]
func (h *CycleHandler) CreateCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.CycleInput{
		Name:                 req.Name,
		Duration:             req.Duration,
		Currency:             req.Currency,
		TotalMoneyAllocation: *req.TotalMoneyAllocation,
		Allocations:          req.Allocations,
	}
	if req.SavingsTarget != nil {
		in.SavingsTarget = *req.SavingsTarget
	}
	if req.StartDate != nil && *req.StartDate != "" {
		start, parseErr := parseFlexibleTime(*req.StartDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date: "+parseErr.Error()))
			return
		}
		in.StartDate = start
	}
	if in.EndDate, err = optionalDate(req.EndDate, "end_date"); err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.CreateCycle(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CYCLE", "budget_cycle", cycle.ID, c.ClientIP(),
		map[string]interface{}{
			"duration":               cycle.Duration,
			"currency":               cycle.Currency,
			"total_money_allocation": cycle.TotalMoneyAllocation.String(),
		})

	c.JSON(http.StatusCreated, gin.H{"cycle": cycle})
}

// GetCycles handles listing the user's budget cycles.
// @Summary     List budget cycles
// @Description Get a paginated list of budget cycles, newest first
// @Tags        cycles
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (active/completed)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetCycle] "Paginated cycles"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /cycles [get]
func (h *CycleHandler) GetCycles(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.CycleStatus
	if v := c.Query("status"); v != "" {
		s := models.CycleStatus(v)
		if s != models.CycleActive && s != models.CycleCompleted {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'active' or 'completed'"))
			return
		}
		status = &s
	}

	result, err := h.cycleService.GetUserCycles(userID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCycle handles fetching a single budget cycle.
// @Summary     Get a budget cycle
// @Tags        cycles
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Cycle ID"
// @Success     200 {object} models.BudgetCycle "Cycle"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Router      /cycles/{id} [get]
func (h *CycleHandler) GetCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	cycleID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.GetCycleByID(userID, cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// UpdateCycle handles updating an active budget cycle.
// @Summary     Update a budget cycle
// @Description Change the name, amounts, allocations or end date of an active cycle
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Cycle ID"
// @Param       request body UpdateCycleRequest true "Fields to update"
// @Success     200 {object} models.BudgetCycle "Updated cycle"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     409 {object} ErrorResponse "Cycle completed"
// @Router      /cycles/{id} [put]
func (h *CycleHandler) UpdateCycle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	cycleID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.CycleUpdate{
		Name:                 req.Name,
		TotalMoneyAllocation: req.TotalMoneyAllocation,
		SavingsTarget:        req.SavingsTarget,
		Allocations:          req.Allocations,
	}
	if in.EndDate, err = optionalDate(req.EndDate, "end_date"); err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.UpdateCycle(userID, cycleID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.TotalMoneyAllocation != nil {
		changes["total_money_allocation"] = req.TotalMoneyAllocation.String()
	}
	if req.SavingsTarget != nil {
		changes["savings_target"] = req.SavingsTarget.String()
	}
	if req.Allocations != nil {
		changes["allocations"] = req.Allocations
	}
	if in.EndDate != nil {
		changes["end_date"] = in.EndDate
	}
	h.auditService.Log(userID, "UPDATE_CYCLE", "budget_cycle", cycle.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// GetCycleTransactions lists the transactions of one cycle.
// @Summary     List cycle transactions
// @Description Get a paginated list of a cycle's transactions, newest first
// @Tags        cycles
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Cycle ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Router      /cycles/{id}/transactions [get]
func (h *CycleHandler) GetCycleTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	cycleID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetCycleTransactions(userID, cycleID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func optionalDate(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(*s)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, field+": "+err.Error())
	}
	return &t, nil
}
