package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestInMemoryStorage(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SaveSnapshot(ctx, testutil.SampleSnapshot()))

	snap, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Len())
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage(" ")
	if !errors.Is(err, ErrEmptyString) {
		t.Errorf("expected ErrEmptyString, got %v", err)
	}
}

func TestLatestSnapshot_Empty(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.LatestSnapshot(context.Background())
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	original := testutil.SampleSnapshot()
	original.FetchedAt = time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.SaveSnapshot(ctx, original))

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)

	assert.True(t, original.FetchedAt.Equal(got.FetchedAt))
	for _, status := range model.Statuses {
		want := original.Partition(status)
		have := got.Partition(status)
		require.Len(t, have, len(want), status)
		for i := range want {
			assert.Equal(t, want[i].ID, have[i].ID, "order of %s", status)
			assert.Equal(t, want[i].MemberName, have[i].MemberName)
			assert.Equal(t, want[i].ProviderRole, have[i].ProviderRole)
			assert.Equal(t, want[i].RejectionReason, have[i].RejectionReason)
			assert.Equal(t, want[i].HasAmount(), have[i].HasAmount())
			assert.Equal(t, want[i].AmountValue(), have[i].AmountValue())
			if want[i].CreatedAt == nil {
				assert.Nil(t, have[i].CreatedAt)
			} else {
				require.NotNil(t, have[i].CreatedAt)
				assert.True(t, want[i].CreatedAt.Equal(*have[i].CreatedAt))
			}
		}
	}
}

func TestSaveSnapshot_EmptyPartitions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, model.Snapshot{}))

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Approved)
}

func TestSaveSnapshot_KeepsLatest(t *testing.T) {
	store := createTestStorage(t)
	store.SetKeepSnapshots(2)
	ctx := context.Background()

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		snap := model.Snapshot{
			FetchedAt: base.Add(time.Duration(i) * time.Hour),
			Pending:   testutil.Amounts("p", float64(i)),
		}
		require.NoError(t, store.SaveSnapshot(ctx, snap))
	}

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count))
	assert.Equal(t, 2, count)

	var orphans int
	require.NoError(t, store.db.QueryRow(`
		SELECT COUNT(*) FROM snapshot_claims
		WHERE snapshot_id NOT IN (SELECT id FROM snapshots)`).Scan(&orphans))
	assert.Zero(t, orphans, "claims of pruned snapshots are removed")

	latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, latest.Pending, 1)
	assert.Equal(t, 3.0, latest.Pending[0].AmountValue())
}

func TestSaveSnapshot_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	dup := testutil.NewClaim("same").Build()
	err := store.SaveSnapshot(ctx, model.Snapshot{Approved: []model.Claim{dup}, Pending: []model.Claim{dup}})
	assert.ErrorIs(t, err, ErrDuplicateClaims)

	_, err = store.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound, "failed saves leave nothing behind")
}

func TestSaveSnapshot_SkipsClaimsWithoutID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	snap := model.Snapshot{
		Approved: []model.Claim{testutil.NewClaim("a1").Build()},
		Pending: []model.Claim{
			testutil.NewClaim("p1").Build(),
			{ID: ""},
			testutil.NewClaim(" ").Build(),
			testutil.NewClaim("p2").Build(),
		},
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, testutil.IDs(got.Approved))
	assert.Equal(t, []string{"p1", "p2"}, testutil.IDs(got.Pending))

	var claimCount int
	require.NoError(t, store.db.QueryRow(`SELECT claim_count FROM snapshots`).Scan(&claimCount))
	assert.Equal(t, 3, claimCount)
}

func TestRecordAction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	actions := []*model.Action{
		{ClaimID: "c1", Type: model.ActionMarkPaid, PerformedAt: base},
		{ClaimID: "c2", Type: model.ActionReturnForReview, Reason: "missing receipt", PerformedAt: base.Add(time.Minute)},
		{ClaimID: "c1", Type: model.ActionApprove, PerformedAt: base.Add(2 * time.Minute)},
	}
	for _, a := range actions {
		require.NoError(t, store.RecordAction(ctx, a))
		assert.NotZero(t, a.ID)
	}

	all, err := store.RecentActions(ctx, service.ActionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.ActionApprove, all[0].Type)
	assert.Equal(t, "missing receipt", all[1].Reason)

	forC1, err := store.RecentActions(ctx, service.ActionFilter{ClaimID: "c1"})
	require.NoError(t, err)
	assert.Len(t, forC1, 2)

	since := base.Add(30 * time.Second)
	recent, err := store.RecentActions(ctx, service.ActionFilter{Since: &since, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "c1", recent[0].ClaimID)
	assert.True(t, recent[0].PerformedAt.Equal(base.Add(2*time.Minute)))
}

func TestRecordAction_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		action *model.Action
		want   error
	}{
		{"nil", nil, ErrNilParameter},
		{"missing claim", &model.Action{Type: model.ActionApprove}, ErrInvalidAction},
		{"unknown type", &model.Action{ClaimID: "c1", Type: "archive"}, ErrInvalidAction},
		{"reject without reason", &model.Action{ClaimID: "c1", Type: model.ActionReject}, ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.RecordAction(ctx, tt.action), tt.want)
		})
	}
}
