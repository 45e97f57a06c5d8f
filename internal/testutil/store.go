package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

// MemoryStore is an in-memory service.SnapshotStore for tests that do not need
// SQLite. Set the Err fields to make the matching operation fail.
type MemoryStore struct {
	SaveErr   error
	LatestErr error
	RecordErr error

	snapshots []model.Snapshot
	actions   []model.Action
	mu        sync.Mutex
}

// NewMemoryStore returns a store, optionally seeded with snapshots (oldest first).
func NewMemoryStore(seed ...model.Snapshot) *MemoryStore {
	return &MemoryStore{snapshots: append([]model.Snapshot(nil), seed...)}
}

// SaveSnapshot implements service.SnapshotStore.
func (m *MemoryStore) SaveSnapshot(_ context.Context, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.snapshots = append(m.snapshots, snap)
	return nil
}

// LatestSnapshot implements service.SnapshotStore.
func (m *MemoryStore) LatestSnapshot(_ context.Context) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LatestErr != nil {
		return model.Snapshot{}, m.LatestErr
	}
	if len(m.snapshots) == 0 {
		return model.Snapshot{}, common.ErrNotFound
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

// RecordAction implements service.SnapshotStore.
func (m *MemoryStore) RecordAction(_ context.Context, action *model.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	if action.PerformedAt.IsZero() {
		action.PerformedAt = time.Now()
	}
	action.ID = int64(len(m.actions) + 1)
	m.actions = append(m.actions, *action)
	return nil
}

// RecentActions implements service.SnapshotStore. Only ClaimID and Limit are honored.
func (m *MemoryStore) RecentActions(_ context.Context, filter service.ActionFilter) ([]model.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Action
	for i := len(m.actions) - 1; i >= 0; i-- {
		a := m.actions[i]
		if filter.ClaimID != "" && a.ClaimID != filter.ClaimID {
			continue
		}
		out = append(out, a)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Snapshots returns how many snapshots were saved, seeds included.
func (m *MemoryStore) Snapshots() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

// Actions returns the recorded actions, oldest first.
func (m *MemoryStore) Actions() []model.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Action(nil), m.actions...)
}

// Migrate implements service.SnapshotStore.
func (m *MemoryStore) Migrate(context.Context) error { return nil }

// Close implements service.SnapshotStore.
func (m *MemoryStore) Close() error { return nil }

var _ service.SnapshotStore = (*MemoryStore)(nil)
