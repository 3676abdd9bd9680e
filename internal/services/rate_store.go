package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

type rateStore struct {
	db *gorm.DB
}

// NewRateStore returns a currency.RateStore backed by the currency_rates
// table so fetched rates survive restarts.
func NewRateStore(db *gorm.DB) currency.RateStore {
	return &rateStore{db: db}
}

func (s *rateStore) Load(ctx context.Context, code string) (currency.Entry, bool, error) {
	var row models.CurrencyRate
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return currency.Entry{}, false, nil
	}
	if err != nil {
		return currency.Entry{}, false, err
	}
	return currency.Entry{Code: row.Code, Rate: row.Rate, FetchedAt: row.FetchedAt}, true, nil
}

func (s *rateStore) Save(ctx context.Context, entry currency.Entry) error {
	row := models.CurrencyRate{Code: entry.Code, Rate: entry.Rate, FetchedAt: entry.FetchedAt}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "fetched_at"}),
		}).
		Create(&row).Error
}
