package models

import "gorm.io/datatypes"

// AuditLog is one mutation performed through the API. Changes holds the
// fields the request set.
type AuditLog struct {
	Base
	UserID       string            `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Action       string            `gorm:"not null" json:"action"`
	ResourceType string            `gorm:"not null" json:"resource_type"`
	ResourceID   string            `gorm:"type:varchar(64)" json:"resource_id"`
	IPAddress    string            `json:"ip_address"`
	Changes      datatypes.JSONMap `json:"changes,omitempty"`
}
