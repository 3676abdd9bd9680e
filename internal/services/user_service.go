package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

type userService struct {
	db      *gorm.DB
	trigger RefreshTrigger
}

// NewUserService creates a new UserServicer. trigger may be nil.
func NewUserService(db *gorm.DB, trigger RefreshTrigger) UserServicer {
	if trigger == nil {
		trigger = NoopTrigger{}
	}
	return &userService{db: db, trigger: trigger}
}

// UpsertUser creates or updates the local record of an externally managed
// identity.
func (s *userService) UpsertUser(id, email, name, baseCurrency string) (*models.User, error) {
	id = strings.TrimSpace(id)
	email = strings.ToLower(strings.TrimSpace(email))
	if id == "" || email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "id and email are required")
	}
	baseCurrency = strings.ToUpper(strings.TrimSpace(baseCurrency))
	if baseCurrency == "" {
		baseCurrency = currency.USD
	}
	if !currency.IsISO4217(baseCurrency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown currency "+baseCurrency)
	}

	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Base: models.Base{ID: id}, Email: email, Name: name, BaseCurrency: baseCurrency}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &user, nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	changedCurrency := user.BaseCurrency != baseCurrency
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"email":         email,
		"name":          name,
		"base_currency": baseCurrency,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Email, user.Name, user.BaseCurrency = email, name, baseCurrency
	if changedCurrency {
		s.trigger.TriggerRefresh(user.ID)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateBaseCurrency changes the currency analytics are expressed in and
// schedules a recomputation.
func (s *userService) UpdateBaseCurrency(id, code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currency.IsISO4217(code) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown currency "+code)
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user.BaseCurrency == code {
		return user, nil
	}

	if err := s.db.Model(user).Update("base_currency", code).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.BaseCurrency = code

	// Every stored snapshot is expressed in the old currency.
	var categories []string
	if err := s.db.Model(&models.AnalyticsSnapshot{}).
		Where("user_id = ? AND category <> ''", user.ID).
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		logger.Named("users").Warnw("Listing category snapshots failed", "user_id", user.ID, "error", err)
	}
	s.trigger.TriggerRefresh(user.ID, categories...)
	return user, nil
}

// ListUserIDs returns every user ID.
func (s *userService) ListUserIDs() ([]string, error) {
	var ids []string
	if err := s.db.Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}
