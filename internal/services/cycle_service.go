package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/pagination"
)

type cycleService struct {
	db          *gorm.DB
	userService UserServicer
	trigger     RefreshTrigger
}

// NewCycleService creates a new CycleServicer. trigger may be nil.
func NewCycleService(db *gorm.DB, userService UserServicer, trigger RefreshTrigger) CycleServicer {
	if trigger == nil {
		trigger = NoopTrigger{}
	}
	return &cycleService{db: db, userService: userService, trigger: trigger}
}

// CreateCycle starts a new active budget cycle. The end date defaults to
// one duration after the start, and the currency to the user's base
// currency.
func (s *cycleService) CreateCycle(userID string, in CycleInput) (*models.BudgetCycle, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	switch in.Duration {
	case models.CycleWeekly, models.CycleBiweekly, models.CycleMonthly:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration must be weekly, biweekly or monthly")
	}
	if in.TotalMoneyAllocation.IsNegative() || in.SavingsTarget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts must not be negative")
	}
	allocations, err := canonicalAllocations(in.Allocations)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(in.Currency))
	if code == "" {
		code = user.BaseCurrency
	}
	if !currency.IsISO4217(code) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown currency "+code)
	}

	start := in.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}
	end := in.Duration.EndFrom(start)
	if in.EndDate != nil {
		end = *in.EndDate
	}
	if !end.After(start) {
		return nil, apperrors.ErrInvalidPeriod
	}

	cycle := &models.BudgetCycle{
		UserID:               userID,
		Name:                 strings.TrimSpace(in.Name),
		Duration:             in.Duration,
		StartDate:            start,
		EndDate:              end,
		Currency:             code,
		TotalMoneyAllocation: in.TotalMoneyAllocation,
		SavingsTarget:        in.SavingsTarget,
		SpentSoFar:           decimal.Zero,
		Allocations:          datatypes.NewJSONType(allocations),
		CategorySpent:        datatypes.NewJSONType(models.CategoryAmounts{}),
		Status:               models.CycleActive,
	}
	if err := s.db.Create(cycle).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.trigger.TriggerRefresh(userID)
	return cycle, nil
}

// GetUserCycles lists a user's cycles, newest first, optionally filtered by
// status.
func (s *cycleService) GetUserCycles(userID string, page pagination.PageRequest, status *models.CycleStatus) (*pagination.PageResponse[models.BudgetCycle], error) {
	query := s.db.Model(&models.BudgetCycle{}).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	result, err := pagination.Find[models.BudgetCycle](query, page, "start_date DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCycleByID retrieves a cycle owned by userID.
func (s *cycleService) GetCycleByID(userID, cycleID string) (*models.BudgetCycle, error) {
	var cycle models.BudgetCycle
	if err := s.db.Where("id = ? AND user_id = ?", cycleID, userID).First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cycle, nil
}

// UpdateCycle changes the plan of an active cycle. Spent totals are never
// set directly.
func (s *cycleService) UpdateCycle(userID, cycleID string, in CycleUpdate) (*models.BudgetCycle, error) {
	cycle, err := s.GetCycleByID(userID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Status == models.CycleCompleted {
		return nil, apperrors.ErrCycleCompleted
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		cycle.Name = strings.TrimSpace(*in.Name)
		updates["name"] = cycle.Name
	}
	if in.TotalMoneyAllocation != nil {
		if in.TotalMoneyAllocation.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_money_allocation must not be negative")
		}
		cycle.TotalMoneyAllocation = *in.TotalMoneyAllocation
		updates["total_money_allocation"] = cycle.TotalMoneyAllocation
	}
	if in.SavingsTarget != nil {
		if in.SavingsTarget.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "savings_target must not be negative")
		}
		cycle.SavingsTarget = *in.SavingsTarget
		updates["savings_target"] = cycle.SavingsTarget
	}
	if in.Allocations != nil {
		allocations, err := canonicalAllocations(in.Allocations)
		if err != nil {
			return nil, err
		}
		cycle.Allocations = datatypes.NewJSONType(allocations)
		updates["allocations"] = cycle.Allocations
	}
	if in.EndDate != nil {
		if !in.EndDate.After(cycle.StartDate) {
			return nil, apperrors.ErrInvalidPeriod
		}
		cycle.EndDate = *in.EndDate
		updates["end_date"] = cycle.EndDate
	}
	if len(updates) == 0 {
		return cycle, nil
	}

	if err := s.db.Model(cycle).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.trigger.TriggerRefresh(userID)
	return cycle, nil
}

// CompleteExpiredCycles marks every active cycle whose end date is not after
// now as completed and returns the affected user IDs.
func (s *cycleService) CompleteExpiredCycles(now time.Time) ([]string, error) {
	var expired []models.BudgetCycle
	if err := s.db.Select("id", "user_id").
		Where("status = ? AND end_date <= ?", models.CycleActive, now).
		Find(&expired).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(expired) == 0 {
		return []string{}, nil
	}

	ids := make([]string, len(expired))
	seen := make(map[string]bool)
	var users []string
	for i, c := range expired {
		ids[i] = c.ID
		if !seen[c.UserID] {
			seen[c.UserID] = true
			users = append(users, c.UserID)
		}
	}

	if err := s.db.Model(&models.BudgetCycle{}).
		Where("id IN ? AND status = ?", ids, models.CycleActive).
		Update("status", models.CycleCompleted).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("completed expired budget cycles", "cycles", len(ids), "users", len(users))
	for _, u := range users {
		s.trigger.TriggerRefresh(u)
	}
	return users, nil
}

// canonicalAllocations validates an allocation map and rekeys it by the
// canonical category names.
func canonicalAllocations(a models.CategoryAmounts) (models.CategoryAmounts, error) {
	out := make(models.CategoryAmounts, len(a))
	for key, amount := range a {
		cat, ok := models.ParseCategory(string(key))
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidCategory, "unknown category "+string(key))
		}
		if amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocation for "+string(cat)+" must not be negative")
		}
		out[cat] += amount
	}
	return out, nil
}
