// Package engine owns the live state of a claims review session: the last
// confirmed snapshot, the user's criteria, and the report derived from both.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/Veraticus/claimdesk/internal/service"
)

// Source tells where the current snapshot came from.
type Source string

// Snapshot sources.
const (
	SourceNone   Source = "none"
	SourceLive   Source = "live"
	SourceCached Source = "cached"
)

// Session holds one snapshot and one Criteria value and recomputes the report
// in full whenever either changes. Mutations never edit the snapshot; they go
// to the backend and the session re-fetches.
//
// A Session is safe for concurrent use; network and storage I/O happen outside
// its lock.
type Session struct {
	backend  service.ClaimsBackend
	store    service.SnapshotStore
	logger   *slog.Logger
	snapshot model.Snapshot
	criteria report.Criteria
	defaults report.Criteria
	result   report.Result
	source   Source
	mu       sync.RWMutex
}

// NewSession creates a session with default criteria and an empty snapshot.
// store may be nil, in which case snapshots and actions are not persisted.
func NewSession(backend service.ClaimsBackend, store service.SnapshotStore) *Session {
	defaults := report.NewCriteria(report.DefaultAmountCeiling)
	s := &Session{
		backend:  backend,
		store:    store,
		logger:   slog.Default().With("component", "session"),
		criteria: defaults,
		defaults: defaults,
		source:   SourceNone,
	}
	s.adoptLocked(model.Snapshot{}, SourceNone)
	return s
}

// Refresh fetches a new snapshot and replaces the current one wholesale.
// When the fetch fails the current snapshot is kept; if the session has none
// yet it falls back to the store's latest snapshot, then to an empty one.
// The fetch error is returned either way.
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.backend.FetchClaimsReport(ctx)
	if err != nil {
		s.fallback(ctx)
		return fmt.Errorf("failed to refresh claims: %w", err)
	}

	s.mu.Lock()
	s.adoptLocked(snap, SourceLive)
	s.mu.Unlock()

	if s.store != nil {
		if saveErr := s.store.SaveSnapshot(ctx, snap); saveErr != nil {
			common.LogError(saveErr, "Failed to cache snapshot", common.Fields{"claims": snap.Len()})
		}
	}
	return nil
}

// Reload is Refresh for a user-requested reload: a backend that caches the
// report is flushed first so the fetch reaches the server.
func (s *Session) Reload(ctx context.Context) error {
	if flusher, ok := s.backend.(service.CacheFlusher); ok {
		flusher.FlushCache()
	}
	return s.Refresh(ctx)
}

// LoadCached adopts the store's latest snapshot without contacting the backend.
func (s *Session) LoadCached(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("no snapshot store configured: %w", common.ErrNotFound)
	}

	snap, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cached snapshot: %w", err)
	}

	s.mu.Lock()
	s.adoptLocked(snap, SourceCached)
	s.mu.Unlock()
	return nil
}

func (s *Session) fallback(ctx context.Context) {
	s.mu.RLock()
	hasSnapshot := s.source != SourceNone
	s.mu.RUnlock()
	if hasSnapshot {
		s.logger.Warn("Refresh failed, keeping current snapshot")
		return
	}

	if s.store == nil {
		return
	}
	snap, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			common.LogError(err, "Failed to load cached snapshot", nil)
		}
		return
	}

	s.logger.Warn("Backend unavailable, using cached snapshot", "fetched_at", snap.FetchedAt)
	s.mu.Lock()
	s.adoptLocked(snap, SourceCached)
	s.mu.Unlock()
}

// adoptLocked installs a snapshot, moves the criteria onto its amount ceiling
// and recomputes. Callers hold the write lock.
func (s *Session) adoptLocked(snap model.Snapshot, source Source) {
	ceiling := report.MaxObservedAmount(snap)
	s.snapshot = snap
	s.source = source
	s.defaults = report.NewCriteria(ceiling)
	s.criteria.Rebase(ceiling)
	s.recomputeLocked()
}

func (s *Session) recomputeLocked() {
	s.result = report.Apply(s.snapshot, s.criteria)
}

// update applies one criteria change and recomputes.
func (s *Session) update(change func(*report.Criteria)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change(&s.criteria)
	s.recomputeLocked()
}

// SetSearchQuery sets the free-text search.
func (s *Session) SetSearchQuery(query string) {
	s.update(func(c *report.Criteria) { c.SetSearchQuery(query) })
}

// SetStatusScope sets which partitions participate.
func (s *Session) SetStatusScope(scope report.StatusScope) {
	s.update(func(c *report.Criteria) { c.SetStatusScope(scope) })
}

// SetProviderFilter sets the provider-role predicate.
func (s *Session) SetProviderFilter(filter report.ProviderFilter) {
	s.update(func(c *report.Criteria) { c.SetProviderFilter(filter) })
}

// SetPolicyFilter sets the policy predicate.
func (s *Session) SetPolicyFilter(policy string) {
	s.update(func(c *report.Criteria) { c.SetPolicyFilter(policy) })
}

// SetAmountRange sets the inclusive amount range.
func (s *Session) SetAmountRange(minAmount, maxAmount float64) {
	s.update(func(c *report.Criteria) { c.SetAmountRange(minAmount, maxAmount) })
}

// SetDateFrom sets the lower date bound; nil clears it.
func (s *Session) SetDateFrom(date *time.Time) {
	s.update(func(c *report.Criteria) { c.SetDateFrom(date) })
}

// SetDateTo sets the upper date bound; nil clears it.
func (s *Session) SetDateTo(date *time.Time) {
	s.update(func(c *report.Criteria) { c.SetDateTo(date) })
}

// SetSortKey sets the ordering.
func (s *Session) SetSortKey(key report.SortKey) {
	s.update(func(c *report.Criteria) { c.SetSortKey(key) })
}

// Apply replaces the criteria in one step, keeping the session's amount ceiling.
func (s *Session) Apply(next report.Criteria) {
	s.update(func(c *report.Criteria) {
		ceiling := c.Ceiling()
		*c = next
		c.Rebase(ceiling)
	})
}

// Clear resets every dimension to defaults in one step.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Clear(s.defaults)
	s.recomputeLocked()
}

// Criteria returns a copy of the current criteria.
func (s *Session) Criteria() report.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Defaults returns the criteria Clear resets to.
func (s *Session) Defaults() report.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Result returns the current filtered, sorted and aggregated report.
func (s *Session) Result() report.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Snapshot returns the raw snapshot the report is derived from.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Source tells whether the snapshot is live, cached, or absent.
func (s *Session) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// ActiveCount returns how many countable criteria differ from defaults.
func (s *Session) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.CountActive(s.criteria, s.defaults)
}

// IsActive reports whether any criterion, status scope included, differs from defaults.
func (s *Session) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.IsActive(s.criteria, s.defaults)
}

// Policies returns the policy names present in the snapshot.
func (s *Session) Policies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.ObservedPolicies(s.snapshot)
}

// ReturnForReview sends a claim back for review, then re-fetches.
func (s *Session) ReturnForReview(ctx context.Context, claimID, reason string) error {
	return s.mutate(ctx, model.Action{ClaimID: claimID, Type: model.ActionReturnForReview, Reason: reason},
		func() error { return s.backend.ReturnForReview(ctx, claimID, reason) })
}

// MarkAsPaid marks a claim as paid, then re-fetches.
func (s *Session) MarkAsPaid(ctx context.Context, claimID string) error {
	return s.mutate(ctx, model.Action{ClaimID: claimID, Type: model.ActionMarkPaid},
		func() error { return s.backend.MarkAsPaid(ctx, claimID) })
}

// Approve approves a claim, then re-fetches.
func (s *Session) Approve(ctx context.Context, claimID string) error {
	return s.mutate(ctx, model.Action{ClaimID: claimID, Type: model.ActionApprove},
		func() error { return s.backend.Approve(ctx, claimID) })
}

// Reject rejects a claim, then re-fetches.
func (s *Session) Reject(ctx context.Context, claimID, reason string) error {
	return s.mutate(ctx, model.Action{ClaimID: claimID, Type: model.ActionReject, Reason: reason},
		func() error { return s.backend.Reject(ctx, claimID, reason) })
}

// RecentActions returns the logged review actions, newest first.
func (s *Session) RecentActions(ctx context.Context, filter service.ActionFilter) ([]model.Action, error) {
	if s.store == nil {
		return []model.Action{}, nil
	}
	return s.store.RecentActions(ctx, filter)
}

// mutate performs one backend mutation. A rejected call leaves the session
// untouched. An accepted call is logged and followed by a full refresh; if that
// refresh fails the old snapshot stays and the error wraps common.ErrStaleReport.
func (s *Session) mutate(ctx context.Context, action model.Action, call func() error) error {
	if strings.TrimSpace(action.ClaimID) == "" {
		return common.NewUserError("a claim ID is required", common.ErrMutationRejected)
	}
	if action.Type.RequiresReason() && strings.TrimSpace(action.Reason) == "" {
		return common.NewUserError(
			fmt.Sprintf("%s needs a reason", strings.ReplaceAll(string(action.Type), "_", " ")),
			common.ErrMutationRejected)
	}

	if err := call(); err != nil {
		return err
	}

	action.PerformedAt = time.Now()
	if s.store != nil {
		if err := s.store.RecordAction(ctx, &action); err != nil {
			common.LogError(err, "Failed to record action", common.Fields{
				"claim_id": action.ClaimID,
				"action":   string(action.Type),
			})
		}
	}

	s.logger.Info("Claim updated", "claim_id", action.ClaimID, "action", string(action.Type))

	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("%s accepted for claim %s but %w: %w",
			action.Type, action.ClaimID, common.ErrStaleReport, err)
	}
	return nil
}
