package models

import (
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/uuid"

	"gorm.io/gorm"
)

// Base contains the columns shared by every mutable table. IDs are opaque
// strings, never database-native sequences.
type Base struct {
	ID        string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUIDv7 when the caller did not supply an ID.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
