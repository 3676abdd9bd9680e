package models

import (
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"

	"gorm.io/datatypes"
)

// SnapshotStatus tracks whether a snapshot carries a current narrative.
type SnapshotStatus string

const (
	SnapshotComputed SnapshotStatus = "computed"
	SnapshotNarrated SnapshotStatus = "narrated"
)

// AnalyticsSnapshot caches the derived analytics of one user, optionally
// scoped to one category. An empty Category is the overall snapshot.
type AnalyticsSnapshot struct {
	ID             string                                 `gorm:"type:varchar(64);primaryKey"`
	UserID         string                                 `gorm:"type:varchar(64);not null;uniqueIndex:idx_snapshot_user_category"`
	Category       string                                 `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_snapshot_user_category"`
	Status         SnapshotStatus                         `gorm:"type:varchar(16);not null"`
	Insights       datatypes.JSONType[analytics.Insights] `gorm:"not null"`
	Narrative      string                                 `gorm:"type:text"`
	NarrativeStale bool                                   `gorm:"not null;default:false"`
	NarratedAt     *time.Time                             `gorm:"index"`
	LastUpdated    time.Time                              `gorm:"not null"`
	Version        int64                                  `gorm:"not null;default:1"`
}

// SnapshotView is the JSON shape returned to clients: the insight fields
// flattened alongside the snapshot envelope.
type SnapshotView struct {
	analytics.Insights
	ID             string         `json:"id"`
	Status         SnapshotStatus `json:"status"`
	Narrative      string         `json:"narrative"`
	NarrativeStale bool           `json:"narrativeStale"`
	NarratedAt     *time.Time     `json:"narratedAt,omitempty"`
	LastUpdated    time.Time      `json:"lastUpdated"`
}

// View flattens s for API responses.
func (s *AnalyticsSnapshot) View() SnapshotView {
	return SnapshotView{
		Insights:       s.Insights.Data(),
		ID:             s.ID,
		Status:         s.Status,
		Narrative:      s.Narrative,
		NarrativeStale: s.NarrativeStale,
		NarratedAt:     s.NarratedAt,
		LastUpdated:    s.LastUpdated,
	}
}
