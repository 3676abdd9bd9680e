package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db           *gorm.DB
	cycleService CycleServicer
	conv         analytics.Converter
	trigger      RefreshTrigger
}

// NewTransactionService creates a new TransactionServicer. conv converts
// transaction amounts into the cycle currency before they are applied to
// the cycle totals.
func NewTransactionService(db *gorm.DB, cycleService CycleServicer, conv analytics.Converter, trigger RefreshTrigger) TransactionServicer {
	if trigger == nil {
		trigger = NoopTrigger{}
	}
	return &transactionService{
		db:           db,
		cycleService: cycleService,
		conv:         conv,
		trigger:      trigger,
	}
}

// CreateTransaction records a purchase against an active cycle of the user.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.CycleID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cycle ID is required")
	}
	category, ok := models.ParseCategory(string(in.Category))
	if !ok {
		return nil, apperrors.ErrInvalidCategory
	}

	cycle, err := s.cycleService.GetCycleByID(userID, in.CycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Status == models.CycleCompleted {
		return nil, apperrors.ErrCycleCompleted
	}

	code := strings.ToUpper(strings.TrimSpace(in.Currency))
	if code == "" {
		code = cycle.Currency
	}
	if !currency.IsISO4217(code) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown currency "+code)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	performed := models.PerformedNo
	if in.PerformedAfterRecommendation {
		performed = models.PerformedYes
	}

	txn := &models.Transaction{
		UserID:                       userID,
		CycleID:                      cycle.ID,
		Description:                  strings.TrimSpace(in.Description),
		Category:                     category,
		Amount:                       in.Amount,
		Currency:                     code,
		Date:                         date,
		PerformedAfterRecommendation: performed,
	}

	delta := s.toCycleCurrency(ctx, txn.Amount, code, cycle.Currency)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applySpend(tx, cycle.ID, category, delta)
	})
	if err != nil {
		return nil, err
	}

	s.trigger.TriggerRefresh(userID, string(category))
	return txn, nil
}

// UpdateTransaction edits a transaction, moving its amount between cycle
// totals when the amount or category changes.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionUpdate) (*models.Transaction, error) {
	txn, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	oldCategory, oldAmount := txn.Category, txn.Amount
	if in.Description != nil {
		txn.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		category, ok := models.ParseCategory(string(*in.Category))
		if !ok {
			return nil, apperrors.ErrInvalidCategory
		}
		txn.Category = category
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		txn.Amount = *in.Amount
	}
	if in.Date != nil && !in.Date.IsZero() {
		txn.Date = *in.Date
	}

	cycle, err := s.cycleService.GetCycleByID(userID, txn.CycleID)
	if err != nil {
		return nil, err
	}
	oldDelta := s.toCycleCurrency(ctx, oldAmount, txn.Currency, cycle.Currency).Neg()
	newDelta := s.toCycleCurrency(ctx, txn.Amount, txn.Currency, cycle.Currency)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(txn).Updates(map[string]interface{}{
			"description": txn.Description,
			"category":    txn.Category,
			"amount":      txn.Amount,
			"date":        txn.Date,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if oldCategory == txn.Category && oldAmount.Equal(txn.Amount) {
			return nil
		}
		if err := s.applySpend(tx, txn.CycleID, oldCategory, oldDelta); err != nil {
			return err
		}
		return s.applySpend(tx, txn.CycleID, txn.Category, newDelta)
	})
	if err != nil {
		return nil, err
	}

	if oldCategory != txn.Category {
		s.trigger.TriggerRefresh(userID, string(oldCategory), string(txn.Category))
	} else {
		s.trigger.TriggerRefresh(userID, string(txn.Category))
	}
	return txn, nil
}

// DeleteTransaction soft-deletes a transaction and removes its amount from
// the cycle totals.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	txn, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	cycle, err := s.cycleService.GetCycleByID(userID, txn.CycleID)
	if err != nil {
		return err
	}
	delta := s.toCycleCurrency(ctx, txn.Amount, txn.Currency, cycle.Currency).Neg()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applySpend(tx, txn.CycleID, txn.Category, delta)
	})
	if err != nil {
		return err
	}

	s.trigger.TriggerRefresh(userID, string(txn.Category))
	return nil
}

// SetPerformedAfterRecommendation records whether the user went ahead with
// the purchase. Only performed purchases count towards analytics.
func (s *transactionService) SetPerformedAfterRecommendation(userID, transactionID string, performed bool) (*models.Transaction, error) {
	txn, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	value := models.PerformedNo
	if performed {
		value = models.PerformedYes
	}
	if txn.PerformedAfterRecommendation == value {
		return txn, nil
	}
	if err := s.db.Model(txn).Update("performed_after_recommendation", value).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	txn.PerformedAfterRecommendation = value

	s.trigger.TriggerRefresh(userID, string(txn.Category))
	return txn, nil
}

// SetRecommendation stores a generated verdict on the transaction.
func (s *transactionService) SetRecommendation(transactionID string, rec Recommendation) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&txn).Updates(map[string]interface{}{
		"recommendation":            rec.Label,
		"recommendation_reasoning":  rec.Reasoning,
		"recommendation_confidence": rec.Confidence,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	txn.Recommendation = rec.Label
	txn.RecommendationReasoning = rec.Reasoning
	txn.RecommendationConfidence = rec.Confidence
	return &txn, nil
}

// GetTransactionByID retrieves a transaction owned by userID.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// GetCycleTransactions lists a cycle's transactions, newest first.
func (s *transactionService) GetCycleTransactions(userID, cycleID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.cycleService.GetCycleByID(userID, cycleID); err != nil {
		return nil, err
	}
	query := s.db.Model(&models.Transaction{}).Where("cycle_id = ?", cycleID)
	result, err := pagination.Find[models.Transaction](query, page, "date DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// toCycleCurrency converts amount from the transaction currency into the
// cycle currency. It must run outside a DB transaction: rate lookups read
// and write the rate store through the shared pool.
func (s *transactionService) toCycleCurrency(ctx context.Context, amount decimal.Decimal, from, cycleCurrency string) decimal.Decimal {
	if from == cycleCurrency || s.conv == nil {
		return amount
	}
	converted := s.conv.Convert(ctx, amount.InexactFloat64(), from, cycleCurrency)
	return decimal.NewFromFloat(converted).Round(4)
}

// applySpend adds delta, already in the cycle currency, to the cycle's
// spent totals. Both totals are clamped at zero.
func (s *transactionService) applySpend(tx *gorm.DB, cycleID string, category models.Category, delta decimal.Decimal) error {
	var cycle models.BudgetCycle
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", cycleID).
		First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCycleNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := cycle.SpentSoFar.Add(delta)
	if spent.IsNegative() {
		spent = decimal.Zero
	}

	perCategory := models.CategoryAmounts{}
	for k, v := range cycle.CategorySpent.Data() {
		perCategory[k] = v
	}
	next, _ := decimal.NewFromFloat(perCategory.Get(category)).Add(delta).Round(4).Float64()
	if next < 0 {
		next = 0
	}
	perCategory[category] = next

	if err := tx.Model(&cycle).Updates(map[string]interface{}{
		"spent_so_far":   spent,
		"category_spent": datatypes.NewJSONType(perCategory),
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
