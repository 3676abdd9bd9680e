// Package jobs runs background work triggered by API requests. Jobs for the
// same user run one at a time in publish order; jobs for different users run
// concurrently.
package jobs

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Kind is the type of a background job.
type Kind string

const (
	// KindRefreshAnalytics recomputes an analytics snapshot.
	KindRefreshAnalytics Kind = "refresh_analytics"
	// KindNarrate generates the narrative of a snapshot.
	KindNarrate Kind = "narrate"
	// KindRecommend produces a purchase recommendation for a transaction.
	KindRecommend Kind = "recommend"
)

// Errors returned by Publish.
var (
	ErrClosed = errors.New("job queue is closed")
	ErrFull   = errors.New("job queue is full")
)

// Job is one unit of background work.
type Job struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	UserID        string    `json:"user_id"`
	Category      string    `json:"category,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// key identifies jobs that are interchangeable while still pending.
func (j Job) key() string {
	return strings.Join([]string{string(j.Kind), j.UserID, j.Category, j.TransactionID}, "|")
}

// Handler processes a job. Errors are logged; jobs are not retried.
type Handler func(ctx context.Context, job Job) error

// Publisher enqueues jobs.
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}
