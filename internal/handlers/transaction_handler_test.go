package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions/:id", handler.GetTransaction)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	auth.PUT("/transactions/:id/decision", handler.RecordDecision)
	auth.POST("/transactions/:id/recommendation", handler.RequestRecommendation)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.TransactionInput
		svc := &mockTransactionService{
			createFn: func(userID string, in services.TransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{Base: models.Base{ID: "txn-5"}, UserID: userID, Amount: in.Amount, Currency: "USD"}, nil
			},
		}
		audit := &mockAuditService{}
		pub := &mockPublisher{}
		r := setupTransactionRouter(NewTransactionHandler(svc, audit, pub))

		rec := doRequest(r, "POST", "/transactions",
			`{"cycle_id":"cycle-1","description":"Headphones","category":"Shopping","amount":"89.99","date":"2025-10-02","performed_after_recommendation":"Yes"}`)

		assertStatus(t, rec, http.StatusCreated)
		if got.Category != models.CategoryShopping || !got.Amount.Equal(decimal.RequireFromString("89.99")) {
			t.Errorf("unexpected input %+v", got)
		}
		if !got.PerformedAfterRecommendation {
			t.Error("expected performed flag to be set")
		}
		if got.Date.Day() != 2 {
			t.Errorf("unexpected date %v", got.Date)
		}
		result := parseJSON(t, rec)
		if _, ok := result["recommendation_scheduled"]; ok {
			t.Error("no recommendation was requested")
		}
		if len(pub.jobs) != 0 {
			t.Errorf("expected no jobs, got %v", pub.jobs)
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "CREATE_TRANSACTION" {
			t.Errorf("unexpected audit entries %v", a)
		}
	})

	t.Run("schedules recommendation when requested", func(t *testing.T) {
		pub := &mockPublisher{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, pub))

		rec := doRequest(r, "POST", "/transactions",
			`{"cycle_id":"cycle-1","category":"dining out","amount":25,"request_recommendation":true}`)

		assertStatus(t, rec, http.StatusCreated)
		if parseJSON(t, rec)["recommendation_scheduled"] != true {
			t.Error("expected recommendation_scheduled=true")
		}
		if len(pub.jobs) != 1 || pub.jobs[0].Kind != jobs.KindRecommend || pub.jobs[0].TransactionID != "txn-1" {
			t.Errorf("unexpected jobs %+v", pub.jobs)
		}
	})

	t.Run("still creates when queue is full", func(t *testing.T) {
		pub := &mockPublisher{err: jobs.ErrFull}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, pub))

		rec := doRequest(r, "POST", "/transactions",
			`{"cycle_id":"cycle-1","category":"Travel","amount":25,"request_recommendation":true}`)

		assertStatus(t, rec, http.StatusCreated)
		if parseJSON(t, rec)["recommendation_scheduled"] != false {
			t.Error("expected recommendation_scheduled=false")
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown category", `{"cycle_id":"c","category":"Gadgets","amount":1}`},
		{"missing amount", `{"cycle_id":"c","category":"Travel"}`},
		{"missing cycle", `{"category":"Travel","amount":1}`},
		{"bad currency", `{"cycle_id":"c","category":"Travel","amount":1,"currency":"XYZ"}`},
		{"bad decision", `{"cycle_id":"c","category":"Travel","amount":1,"performed_after_recommendation":"maybe"}`},
		{"bad date", `{"cycle_id":"c","category":"Travel","amount":1,"date":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, &mockPublisher{}))

			rec := doRequest(r, "POST", "/transactions", tt.body)
			assertStatus(t, rec, http.StatusBadRequest)
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 409 on completed cycle", func(t *testing.T) {
		svc := &mockTransactionService{
			createFn: func(string, services.TransactionInput) (*models.Transaction, error) {
				return nil, apperrors.ErrCycleCompleted
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}, &mockPublisher{}))

		rec := doRequest(r, "POST", "/transactions", `{"cycle_id":"c","category":"Travel","amount":1}`)
		assertStatus(t, rec, http.StatusConflict)
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("passes category and amount", func(t *testing.T) {
		var got services.TransactionUpdate
		svc := &mockTransactionService{
			updateFn: func(userID, id string, in services.TransactionUpdate) (*models.Transaction, error) {
				got = in
				return &models.Transaction{Base: models.Base{ID: id}, UserID: userID, Category: models.CategoryTravel}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(svc, audit, &mockPublisher{}))

		rec := doRequest(r, "PUT", "/transactions/txn-1", `{"category":"travel","amount":40}`)
		assertStatus(t, rec, http.StatusOK)
		if got.Category == nil || *got.Category != "travel" {
			t.Errorf("unexpected category %v", got.Category)
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.NewFromInt(40)) {
			t.Errorf("unexpected amount %v", got.Amount)
		}
		if got.Description != nil || got.Date != nil {
			t.Errorf("unexpected fields set %+v", got)
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "UPDATE_TRANSACTION" {
			t.Errorf("unexpected audit entries %v", a)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockTransactionService{
			updateFn: func(string, string, services.TransactionUpdate) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}, &mockPublisher{}))

		rec := doRequest(r, "PUT", "/transactions/nope", `{"description":"x"}`)
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 and audits", func(t *testing.T) {
		var gotID string
		svc := &mockTransactionService{
			deleteFn: func(_, id string) error {
				gotID = id
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(svc, audit, &mockPublisher{}))

		rec := doRequest(r, "DELETE", "/transactions/txn-8", "")
		assertStatus(t, rec, http.StatusOK)
		if gotID != "txn-8" {
			t.Errorf("expected txn-8, got %q", gotID)
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "DELETE_TRANSACTION" {
			t.Errorf("unexpected audit entries %v", a)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockTransactionService{
			deleteFn: func(string, string) error { return apperrors.ErrTransactionNotFound },
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}, &mockPublisher{}))

		rec := doRequest(r, "DELETE", "/transactions/nope", "")
		assertStatus(t, rec, http.StatusNotFound)
	})
}

func TestTransactionHandler_RecordDecision(t *testing.T) {
	t.Run("records yes", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, &mockPublisher{}))

		rec := doRequest(r, "PUT", "/transactions/txn-1/decision", `{"performed_after_recommendation":"yes"}`)
		assertStatus(t, rec, http.StatusOK)
		txn := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if txn["performed_after_recommendation"] != "yes" {
			t.Errorf("unexpected transaction %v", txn)
		}
	})

	t.Run("returns 400 on missing decision", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, &mockPublisher{}))

		rec := doRequest(r, "PUT", "/transactions/txn-1/decision", `{}`)
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestTransactionHandler_RequestRecommendation(t *testing.T) {
	t.Run("returns 202 and publishes job", func(t *testing.T) {
		pub := &mockPublisher{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, pub))

		rec := doRequest(r, "POST", "/transactions/txn-4/recommendation", "")
		assertStatus(t, rec, http.StatusAccepted)
		if len(pub.jobs) != 1 {
			t.Fatalf("expected 1 job, got %d", len(pub.jobs))
		}
		job := pub.jobs[0]
		if job.Kind != jobs.KindRecommend || job.UserID != "user-1" || job.TransactionID != "txn-4" {
			t.Errorf("unexpected job %+v", job)
		}
	})

	t.Run("returns 404 for foreign transaction", func(t *testing.T) {
		pub := &mockPublisher{}
		svc := &mockTransactionService{
			getByIDFn: func(string, string) (*models.Transaction, error) { return nil, apperrors.ErrTransactionNotFound },
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}, pub))

		rec := doRequest(r, "POST", "/transactions/other/recommendation", "")
		assertStatus(t, rec, http.StatusNotFound)
		if len(pub.jobs) != 0 {
			t.Error("no job should be published")
		}
	})

	t.Run("returns 503 when queue is full", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, &mockPublisher{err: jobs.ErrFull}))

		rec := doRequest(r, "POST", "/transactions/txn-4/recommendation", "")
		assertStatus(t, rec, http.StatusServiceUnavailable)
		assertErrorCode(t, parseJSON(t, rec), "QUEUE_FULL")
	})

	t.Run("returns 503 when queue is closed", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, &mockPublisher{err: jobs.ErrClosed}))

		rec := doRequest(r, "POST", "/transactions/txn-4/recommendation", "")
		assertStatus(t, rec, http.StatusServiceUnavailable)
		assertErrorCode(t, parseJSON(t, rec), "QUEUE_CLOSED")
	})
}
