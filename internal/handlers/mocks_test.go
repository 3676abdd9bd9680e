package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/middleware"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/pagination"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/services"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// --- mock services ---

type mockUserService struct {
	upsertUserFn         func(id, email, name, baseCurrency string) (*models.User, error)
	getUserByIDFn        func(id string) (*models.User, error)
	updateBaseCurrencyFn func(id, currency string) (*models.User, error)
}

func (m *mockUserService) UpsertUser(id, email, name, baseCurrency string) (*models.User, error) {
	if m.upsertUserFn != nil {
		return m.upsertUserFn(id, email, name, baseCurrency)
	}
	return &models.User{Base: models.Base{ID: id}, Email: email, Name: name, BaseCurrency: "USD"}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, BaseCurrency: "USD"}, nil
}

func (m *mockUserService) UpdateBaseCurrency(id, currency string) (*models.User, error) {
	if m.updateBaseCurrencyFn != nil {
		return m.updateBaseCurrencyFn(id, currency)
	}
	return &models.User{Base: models.Base{ID: id}, BaseCurrency: strings.ToUpper(currency)}, nil
}

func (m *mockUserService) ListUserIDs() ([]string, error) { return nil, nil }

var _ services.UserServicer = (*mockUserService)(nil)

type mockCycleService struct {
	createCycleFn     func(userID string, in services.CycleInput) (*models.BudgetCycle, error)
	getUserCyclesFn   func(userID string, page pagination.PageRequest, status *models.CycleStatus) (*pagination.PageResponse[models.BudgetCycle], error)
	getCycleByIDFn    func(userID, cycleID string) (*models.BudgetCycle, error)
	updateCycleFn     func(userID, cycleID string, in services.CycleUpdate) (*models.BudgetCycle, error)
	completeExpiredFn func(now time.Time) ([]string, error)
}

func (m *mockCycleService) CreateCycle(userID string, in services.CycleInput) (*models.BudgetCycle, error) {
	if m.createCycleFn != nil {
		return m.createCycleFn(userID, in)
	}
	return &models.BudgetCycle{Base: models.Base{ID: "cycle-1"}, UserID: userID}, nil
}

func (m *mockCycleService) GetUserCycles(userID string, page pagination.PageRequest, status *models.CycleStatus) (*pagination.PageResponse[models.BudgetCycle], error) {
	if m.getUserCyclesFn != nil {
		return m.getUserCyclesFn(userID, page, status)
	}
	resp := pagination.NewPageResponse([]models.BudgetCycle{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCycleService) GetCycleByID(userID, cycleID string) (*models.BudgetCycle, error) {
	if m.getCycleByIDFn != nil {
		return m.getCycleByIDFn(userID, cycleID)
	}
	return &models.BudgetCycle{Base: models.Base{ID: cycleID}, UserID: userID}, nil
}

func (m *mockCycleService) UpdateCycle(userID, cycleID string, in services.CycleUpdate) (*models.BudgetCycle, error) {
	if m.updateCycleFn != nil {
		return m.updateCycleFn(userID, cycleID, in)
	}
	return &models.BudgetCycle{Base: models.Base{ID: cycleID}, UserID: userID}, nil
}

func (m *mockCycleService) CompleteExpiredCycles(now time.Time) ([]string, error) {
	if m.completeExpiredFn != nil {
		return m.completeExpiredFn(now)
	}
	return []string{}, nil
}

var _ services.CycleServicer = (*mockCycleService)(nil)

type mockTransactionService struct {
	createFn       func(userID string, in services.TransactionInput) (*models.Transaction, error)
	updateFn       func(userID, transactionID string, in services.TransactionUpdate) (*models.Transaction, error)
	deleteFn       func(userID, transactionID string) error
	setPerformedFn func(userID, transactionID string, performed bool) (*models.Transaction, error)
	getByIDFn      func(userID, transactionID string) (*models.Transaction, error)
	getCycleTxnsFn func(userID, cycleID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.Transaction{Base: models.Base{ID: "txn-1"}, UserID: userID, CycleID: in.CycleID, Category: in.Category, Amount: in.Amount}, nil
}

func (m *mockTransactionService) UpdateTransaction(_ context.Context, userID, transactionID string, in services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, transactionID, in)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}, UserID: userID}, nil
}

func (m *mockTransactionService) DeleteTransaction(_ context.Context, userID, transactionID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, transactionID)
	}
	return nil
}

func (m *mockTransactionService) SetPerformedAfterRecommendation(userID, transactionID string, performed bool) (*models.Transaction, error) {
	if m.setPerformedFn != nil {
		return m.setPerformedFn(userID, transactionID, performed)
	}
	value := models.PerformedNo
	if performed {
		value = models.PerformedYes
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}, UserID: userID, PerformedAfterRecommendation: value}, nil
}

func (m *mockTransactionService) SetRecommendation(transactionID string, _ services.Recommendation) (*models.Transaction, error) {
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, transactionID)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}, UserID: userID}, nil
}

func (m *mockTransactionService) GetCycleTransactions(userID, cycleID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getCycleTxnsFn != nil {
		return m.getCycleTxnsFn(userID, cycleID, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockAnalyticsService struct {
	refreshFn     func(userID, category string) (*models.AnalyticsSnapshot, error)
	getSnapshotFn func(userID, category string) (*models.AnalyticsSnapshot, error)
	refreshAllFn  func() (int, error)
}

func (m *mockAnalyticsService) Refresh(_ context.Context, userID, category string) (*models.AnalyticsSnapshot, error) {
	if m.refreshFn != nil {
		return m.refreshFn(userID, category)
	}
	return &models.AnalyticsSnapshot{UserID: userID, Category: category}, nil
}

func (m *mockAnalyticsService) GetSnapshot(userID, category string) (*models.AnalyticsSnapshot, error) {
	if m.getSnapshotFn != nil {
		return m.getSnapshotFn(userID, category)
	}
	return &models.AnalyticsSnapshot{UserID: userID, Category: category}, nil
}

func (m *mockAnalyticsService) RefreshAll(context.Context) (int, error) {
	if m.refreshAllFn != nil {
		return m.refreshAllFn()
	}
	return 0, nil
}

var _ services.AnalyticsServicer = (*mockAnalyticsService)(nil)

type mockNarrativeService struct {
	narrateFn func(userID, category string) (*models.AnalyticsSnapshot, error)
}

func (m *mockNarrativeService) Narrate(_ context.Context, userID, category string) (*models.AnalyticsSnapshot, error) {
	if m.narrateFn != nil {
		return m.narrateFn(userID, category)
	}
	return &models.AnalyticsSnapshot{UserID: userID, Category: category, Status: models.SnapshotNarrated}, nil
}

func (m *mockNarrativeService) Enabled() bool { return true }

var _ services.NarrativeServicer = (*mockNarrativeService)(nil)

type auditEntry struct {
	userID, action, resourceType, resourceID string
	changes                                  map[string]interface{}
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID, changes})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.action
	}
	return out
}

type mockPublisher struct {
	jobs []jobs.Job
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

// --- test helpers ---

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
