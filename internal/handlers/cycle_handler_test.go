package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/pagination"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

func setupCycleRouter(handler *CycleHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/cycles", handler.CreateCycle)
	auth.GET("/cycles", handler.GetCycles)
	auth.GET("/cycles/:id", handler.GetCycle)
	auth.PUT("/cycles/:id", handler.UpdateCycle)
	auth.GET("/cycles/:id/transactions", handler.GetCycleTransactions)
	return r
}

func TestCycleHandler_CreateCycle(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.CycleInput
		svc := &mockCycleService{
			createCycleFn: func(userID string, in services.CycleInput) (*models.BudgetCycle, error) {
				got = in
				return &models.BudgetCycle{
					Base:                 models.Base{ID: "cycle-9"},
					UserID:               userID,
					Duration:             in.Duration,
					Currency:             "USD",
					TotalMoneyAllocation: in.TotalMoneyAllocation,
					Status:               models.CycleActive,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCycleRouter(NewCycleHandler(svc, &mockTransactionService{}, audit))

		rec := doRequest(r, "POST", "/cycles",
			`{"name":"October","duration":"monthly","start_date":"2025-10-01","total_money_allocation":1500.50,"savings_target":"300","allocations":{"Groceries":400}}`)

		assertStatus(t, rec, http.StatusCreated)
		cycle := parseJSON(t, rec)["cycle"].(map[string]interface{})
		if cycle["id"] != "cycle-9" || cycle["duration"] != "monthly" {
			t.Errorf("unexpected cycle %v", cycle)
		}
		if !got.TotalMoneyAllocation.Equal(decimal.RequireFromString("1500.5")) {
			t.Errorf("expected allocation 1500.5, got %s", got.TotalMoneyAllocation)
		}
		if !got.SavingsTarget.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected savings 300, got %s", got.SavingsTarget)
		}
		if !got.StartDate.Equal(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected start %v", got.StartDate)
		}
		if got.EndDate != nil {
			t.Errorf("expected no end date, got %v", got.EndDate)
		}
		if got.Allocations.Get(models.CategoryGroceries) != 400 {
			t.Errorf("unexpected allocations %v", got.Allocations)
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "CREATE_CYCLE" {
			t.Errorf("unexpected audit entries %v", a)
		}
	})

	t.Run("returns 400 on invalid duration", func(t *testing.T) {
		r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/cycles", `{"duration":"daily","total_money_allocation":100}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing allocation", func(t *testing.T) {
		r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/cycles", `{"duration":"weekly"}`)
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 400 on bad end date", func(t *testing.T) {
		r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/cycles", `{"duration":"weekly","total_money_allocation":100,"end_date":"next week"}`)
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("propagates service errors", func(t *testing.T) {
		svc := &mockCycleService{
			createCycleFn: func(string, services.CycleInput) (*models.BudgetCycle, error) {
				return nil, apperrors.ErrInvalidPeriod
			},
		}
		audit := &mockAuditService{}
		r := setupCycleRouter(NewCycleHandler(svc, &mockTransactionService{}, audit))

		rec := doRequest(r, "POST", "/cycles", `{"duration":"weekly","total_money_allocation":100,"end_date":"2020-01-01"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_PERIOD")
		if len(audit.actions()) != 0 {
			t.Error("failed creation must not be audited")
		}
	})
}

func TestCycleHandler_GetCycles(t *testing.T) {
	t.Run("passes status filter and pagination", func(t *testing.T) {
		var gotStatus *models.CycleStatus
		var gotPage pagination.PageRequest
		svc := &mockCycleService{
			getUserCyclesFn: func(_ string, page pagination.PageRequest, status *models.CycleStatus) (*pagination.PageResponse[models.BudgetCycle], error) {
				gotStatus, gotPage = status, page
				resp := pagination.NewPageResponse([]models.BudgetCycle{{Base: models.Base{ID: "c1"}}}, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupCycleRouter(NewCycleHandler(svc, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/cycles?status=completed&page=2&page_size=5", "")
		assertStatus(t, rec, http.StatusOK)
		if gotStatus == nil || *gotStatus != models.CycleCompleted {
			t.Errorf("expected completed filter, got %v", gotStatus)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		result := parseJSON(t, rec)
		if result["total_pages"].(float64) != 2 {
			t.Errorf("expected 2 pages, got %v", result["total_pages"])
		}
	})

	t.Run("returns 400 on unknown status", func(t *testing.T) {
		r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/cycles?status=archived", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/cycles?page_size=1000", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestCycleHandler_GetCycle(t *testing.T) {
	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockCycleService{
			getCycleByIDFn: func(string, string) (*models.BudgetCycle, error) { return nil, apperrors.ErrCycleNotFound },
		}
		r := setupCycleRouter(NewCycleHandler(svc, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/cycles/nope", "")
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "CYCLE_NOT_FOUND")
	})

	t.Run("returns cycle", func(t *testing.T) {
		r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/cycles/cycle-3", "")
		assertStatus(t, rec, http.StatusOK)
		cycle := parseJSON(t, rec)["cycle"].(map[string]interface{})
		if cycle["id"] != "cycle-3" {
			t.Errorf("unexpected cycle %v", cycle)
		}
	})
}

func TestCycleHandler_UpdateCycle(t *testing.T) {
	t.Run("passes optional fields", func(t *testing.T) {
		var got services.CycleUpdate
		svc := &mockCycleService{
			updateCycleFn: func(userID, cycleID string, in services.CycleUpdate) (*models.BudgetCycle, error) {
				got = in
				return &models.BudgetCycle{Base: models.Base{ID: cycleID}, UserID: userID}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCycleRouter(NewCycleHandler(svc, &mockTransactionService{}, audit))

		rec := doRequest(r, "PUT", "/cycles/cycle-1", `{"savings_target":250,"end_date":"2025-12-31T00:00:00Z"}`)
		assertStatus(t, rec, http.StatusOK)
		if got.Name != nil || got.TotalMoneyAllocation != nil {
			t.Errorf("unexpected fields set: %+v", got)
		}
		if got.SavingsTarget == nil || !got.SavingsTarget.Equal(decimal.NewFromInt(250)) {
			t.Errorf("unexpected savings target %v", got.SavingsTarget)
		}
		if got.EndDate == nil || got.EndDate.Year() != 2025 {
			t.Errorf("unexpected end date %v", got.EndDate)
		}
		entries := audit.entries
		if len(entries) != 1 || entries[0].changes["savings_target"] != "250" {
			t.Errorf("unexpected audit entries %+v", entries)
		}
	})

	t.Run("returns 409 on completed cycle", func(t *testing.T) {
		svc := &mockCycleService{
			updateCycleFn: func(string, string, services.CycleUpdate) (*models.BudgetCycle, error) {
				return nil, apperrors.ErrCycleCompleted
			},
		}
		r := setupCycleRouter(NewCycleHandler(svc, &mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/cycles/cycle-1", `{"name":"x"}`)
		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "CYCLE_COMPLETED")
	})
}

func TestCycleHandler_GetCycleTransactions(t *testing.T) {
	var gotCycle string
	txns := &mockTransactionService{
		getCycleTxnsFn: func(_, cycleID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
			gotCycle = cycleID
			resp := pagination.NewPageResponse([]models.Transaction{{Base: models.Base{ID: "t1"}}}, 1, 20, 1)
			return &resp, nil
		},
	}
	r := setupCycleRouter(NewCycleHandler(&mockCycleService{}, txns, &mockAuditService{}))

	rec := doRequest(r, "GET", "/cycles/cycle-7/transactions", "")
	assertStatus(t, rec, http.StatusOK)
	if gotCycle != "cycle-7" {
		t.Errorf("expected cycle-7, got %q", gotCycle)
	}
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(data))
	}
}
