package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

// AssertAppError fails unless err wraps an *AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected error %s, got nil", code)
	case !errors.As(err, &appErr):
		t.Fatalf("expected error %s, got %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("expected error %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertSnapshot loads the stored snapshot of userID for category ("" for
// the overall one) and checks its status and narrative staleness.
func AssertSnapshot(t *testing.T, db *gorm.DB, userID, category string, status models.SnapshotStatus, stale bool) *models.AnalyticsSnapshot {
	t.Helper()

	var snap models.AnalyticsSnapshot
	if err := db.Where("user_id = ? AND category = ?", userID, category).First(&snap).Error; err != nil {
		t.Fatalf("loading snapshot %s/%q: %v", userID, category, err)
	}
	if snap.Status != status {
		t.Errorf("snapshot %q status = %s, want %s", category, snap.Status, status)
	}
	if snap.NarrativeStale != stale {
		t.Errorf("snapshot %q narrativeStale = %v, want %v", category, snap.NarrativeStale, stale)
	}
	return &snap
}
