package models

import "time"

// CurrencyRate is a persisted rate-to-USD entry of the rate cache.
type CurrencyRate struct {
	Code      string    `gorm:"type:varchar(3);primaryKey" json:"code"`
	Rate      float64   `gorm:"not null" json:"rate"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
}
