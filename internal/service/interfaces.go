// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
)

// ReportProvider delivers the current claims partitions from the backend.
type ReportProvider interface {
	FetchClaimsReport(ctx context.Context) (model.Snapshot, error)
}

// MutationProvider performs state-changing review actions on a single claim.
// A nil error means the backend accepted the action; callers must re-fetch the
// report to observe its effect.
type MutationProvider interface {
	ReturnForReview(ctx context.Context, claimID, reason string) error
	MarkAsPaid(ctx context.Context, claimID string) error
	Approve(ctx context.Context, claimID string) error
	Reject(ctx context.Context, claimID, reason string) error
}

// ClaimsBackend is the full backend surface the dashboard talks to.
type ClaimsBackend interface {
	ReportProvider
	MutationProvider
}

// CacheFlusher is implemented by backends that keep a short-lived copy of the
// report. FlushCache makes the next fetch go to the backend.
type CacheFlusher interface {
	FlushCache()
}

// ActionFilter defines filtering options for the action log.
type ActionFilter struct {
	Since   *time.Time
	ClaimID string
	Limit   int
}

// SnapshotStore persists fetched snapshots and the review actions taken, so the
// dashboard can show the last known report when the backend is unreachable.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
	// LatestSnapshot returns common.ErrNotFound when nothing was ever saved.
	LatestSnapshot(ctx context.Context) (model.Snapshot, error)
	RecordAction(ctx context.Context, action *model.Action) error
	RecentActions(ctx context.Context, filter ActionFilter) ([]model.Action, error)

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions returns the retry policy used for backend calls.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}
