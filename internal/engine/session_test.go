package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/claimdesk/internal/api"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("connection refused")

func newSession(t *testing.T, snap model.Snapshot) (*Session, *api.MockClient, *testutil.MemoryStore) {
	t.Helper()
	backend := api.NewMockClient(snap)
	store := testutil.NewMemoryStore()
	return NewSession(backend, store), backend, store
}

func TestNewSession_Empty(t *testing.T) {
	s := NewSession(api.NewMockClient(model.Snapshot{}), nil)

	assert.Equal(t, SourceNone, s.Source())
	assert.True(t, s.Result().Summary.IsEmpty())
	assert.Zero(t, s.ActiveCount())
	assert.False(t, s.IsActive())
	assert.Equal(t, report.DefaultAmountCeiling, s.Criteria().AmountMax)
}

func TestRefresh_AdoptsSnapshot(t *testing.T) {
	s, backend, store := newSession(t, testutil.SampleSnapshot())

	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, SourceLive, s.Source())
	assert.Equal(t, 1, backend.Fetches())
	assert.Equal(t, 1, store.Snapshots())
	assert.Equal(t, 7, s.Result().Summary.TotalClaims)
	assert.Equal(t, 1300.0, s.Criteria().AmountMax, "range follows the observed maximum")
	assert.Equal(t, 1300.0, s.Defaults().AmountMax)
	assert.Zero(t, s.ActiveCount())
	assert.Equal(t, []string{"Acme Health", "Globex"}, s.Policies())
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	s, backend, _ := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	backend.FetchClaimsReportFn = func(context.Context) (model.Snapshot, error) {
		return model.Snapshot{}, errBackendDown
	}

	err := s.Refresh(ctx)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, SourceLive, s.Source())
	assert.Equal(t, 7, s.Result().Summary.TotalClaims)
}

func TestRefresh_FailureFallsBackToStore(t *testing.T) {
	cached := model.Snapshot{Pending: testutil.Amounts("p", 40, 60)}
	backend := api.NewMockClient(model.Snapshot{})
	backend.FetchClaimsReportFn = func(context.Context) (model.Snapshot, error) {
		return model.Snapshot{}, errBackendDown
	}
	s := NewSession(backend, testutil.NewMemoryStore(cached))

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, SourceCached, s.Source())
	assert.Equal(t, 2, s.Result().Summary.PendingClaims)
	assert.Equal(t, 100.0, s.Result().Summary.TotalPendingAmount)
}

func TestRefresh_FailureWithNothingCached(t *testing.T) {
	backend := api.NewMockClient(model.Snapshot{})
	backend.FetchClaimsReportFn = func(context.Context) (model.Snapshot, error) {
		return model.Snapshot{}, errBackendDown
	}
	s := NewSession(backend, testutil.NewMemoryStore())

	require.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, SourceNone, s.Source())
	assert.True(t, s.Result().Summary.IsEmpty())
}

func TestRefresh_StoreFailureIsNotFatal(t *testing.T) {
	s, _, store := newSession(t, testutil.SampleSnapshot())
	store.SaveErr = errors.New("disk full")

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 7, s.Result().Summary.TotalClaims)
}

func TestLoadCached(t *testing.T) {
	s := NewSession(api.NewMockClient(model.Snapshot{}), testutil.NewMemoryStore(testutil.SampleSnapshot()))

	require.NoError(t, s.LoadCached(context.Background()))
	assert.Equal(t, SourceCached, s.Source())
	assert.Equal(t, 7, s.Result().Summary.TotalClaims)

	empty := NewSession(api.NewMockClient(model.Snapshot{}), testutil.NewMemoryStore())
	assert.ErrorIs(t, empty.LoadCached(context.Background()), common.ErrNotFound)

	noStore := NewSession(api.NewMockClient(model.Snapshot{}), nil)
	assert.ErrorIs(t, noStore.LoadCached(context.Background()), common.ErrNotFound)
}

func TestSetters_Recompute(t *testing.T) {
	s, _, _ := newSession(t, testutil.SampleSnapshot())
	require.NoError(t, s.Refresh(context.Background()))

	s.SetStatusScope(report.ScopeApproved)
	assert.Equal(t, 3, s.Result().Summary.TotalClaims)
	assert.Zero(t, s.ActiveCount())
	assert.True(t, s.IsActive())

	s.SetSearchQuery("acme")
	assert.Equal(t, 2, s.Result().Summary.TotalClaims)

	s.SetProviderFilter(report.ProviderFilter(model.RoleDoctor))
	assert.Equal(t, 1, s.Result().Summary.TotalClaims)
	assert.Equal(t, 2, s.ActiveCount())

	s.SetSortKey(report.SortAmountDesc)
	s.SetPolicyFilter("Acme Health")
	s.SetAmountRange(100, 200)
	from, err := report.ParseDate("2024-01-01")
	require.NoError(t, err)
	s.SetDateFrom(from)
	s.SetDateTo(nil)
	assert.Equal(t, 6, s.ActiveCount())
	assert.Equal(t, []string{"a1"}, testutil.IDs(s.Result().Approved))

	s.Clear()
	assert.Zero(t, s.ActiveCount())
	assert.False(t, s.IsActive())
	assert.Equal(t, 7, s.Result().Summary.TotalClaims)
	assert.Equal(t, s.Defaults(), s.Criteria())
}

func TestApply_KeepsCeiling(t *testing.T) {
	s, _, _ := newSession(t, testutil.SampleSnapshot())
	require.NoError(t, s.Refresh(context.Background()))

	next := report.NewCriteria(report.DefaultAmountCeiling)
	next.SetSortKey(report.SortMemberNameAsc)
	s.Apply(next)

	assert.Equal(t, 1300.0, s.Criteria().Ceiling())
	assert.Equal(t, 1300.0, s.Criteria().AmountMax)
	assert.Equal(t, 1, s.ActiveCount())
}

func TestRefresh_NarrowedRangeSurvives(t *testing.T) {
	s, backend, _ := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	s.SetAmountRange(100, 500)
	backend.FetchClaimsReportFn = func(context.Context) (model.Snapshot, error) {
		return model.Snapshot{Approved: testutil.Amounts("a", 150, 5000)}, nil
	}
	require.NoError(t, s.Refresh(ctx))

	c := s.Criteria()
	assert.Equal(t, 100.0, c.AmountMin)
	assert.Equal(t, 500.0, c.AmountMax)
	assert.Equal(t, 5000.0, c.Ceiling())
	assert.Equal(t, []string{"a-0"}, testutil.IDs(s.Result().Approved))
}

func TestMarkAsPaid_RefetchesWithoutLocalPatch(t *testing.T) {
	before := testutil.SampleSnapshot()
	after := testutil.SampleSnapshot()
	after.Approved = append(after.Approved, after.Pending[0])
	after.Pending = after.Pending[1:]

	s, backend, store := newSession(t, before)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	backend.MarkAsPaidFn = func(context.Context, string) error {
		assert.Equal(t, 2, s.Result().Summary.PendingClaims, "no optimistic update")
		backend.FetchClaimsReportFn = func(context.Context) (model.Snapshot, error) {
			return after, nil
		}
		return nil
	}

	require.NoError(t, s.MarkAsPaid(ctx, "p1"))

	assert.Equal(t, 2, backend.Fetches())
	assert.Equal(t, 1, s.Result().Summary.PendingClaims)
	assert.Equal(t, 4, s.Result().Summary.ApprovedClaims)

	actions := store.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, model.ActionMarkPaid, actions[0].Type)
	assert.Equal(t, "p1", actions[0].ClaimID)
}

func TestMutation_FailureLeavesState(t *testing.T) {
	s, backend, store := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))
	s.SetSearchQuery("globex")
	before := s.Result()

	backend.ReturnForReviewFn = func(context.Context, string, string) error {
		return common.ErrMutationRejected
	}

	err := s.ReturnForReview(ctx, "a2", "wrong policy")
	assert.ErrorIs(t, err, common.ErrMutationRejected)
	assert.Equal(t, before, s.Result())
	assert.Equal(t, "globex", s.Criteria().SearchQuery)
	assert.Equal(t, 1, backend.Fetches(), "no re-fetch after a rejected mutation")
	assert.Empty(t, store.Actions())
}

func TestMutation_RefetchFailure(t *testing.T) {
	s, backend, _ := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	backend.ApproveFn = func(context.Context, string) error {
		backend.FetchClaimsReportFn = func(context.Context) (model.Snapshot, error) {
			return model.Snapshot{}, errBackendDown
		}
		return nil
	}

	err := s.Approve(ctx, "p1")
	assert.ErrorIs(t, err, errBackendDown)
	assert.ErrorIs(t, err, common.ErrStaleReport)
	assert.Contains(t, err.Error(), "accepted")
	assert.Equal(t, 7, s.Result().Summary.TotalClaims)
}

func TestReload_FlushesClientCache(t *testing.T) {
	s, backend, _ := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	assert.Zero(t, backend.Flushes())

	require.NoError(t, s.Reload(ctx))
	assert.Equal(t, 1, backend.Flushes())
	assert.Equal(t, 2, backend.Fetches())
}

func TestMutation_RequiresReason(t *testing.T) {
	s, backend, _ := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()

	err := s.Reject(ctx, "p1", "  ")
	assert.ErrorIs(t, err, common.ErrMutationRejected)
	assert.Equal(t, "reject needs a reason", common.UserMessage(err))

	err = s.ReturnForReview(ctx, "p1", "")
	assert.ErrorIs(t, err, common.ErrMutationRejected)

	err = s.MarkAsPaid(ctx, "")
	assert.ErrorIs(t, err, common.ErrMutationRejected)

	assert.Empty(t, backend.Calls())
}

func TestMutations_ForwardArguments(t *testing.T) {
	s, backend, _ := newSession(t, testutil.SampleSnapshot())
	ctx := context.Background()

	require.NoError(t, s.Reject(ctx, "p1", "not covered"))
	require.NoError(t, s.ReturnForReview(ctx, "r1", "check receipt"))
	require.NoError(t, s.Approve(ctx, "p2"))

	assert.Equal(t, []api.MutationCall{
		{Action: model.ActionReject, ClaimID: "p1", Reason: "not covered"},
		{Action: model.ActionReturnForReview, ClaimID: "r1", Reason: "check receipt"},
		{Action: model.ActionApprove, ClaimID: "p2"},
	}, backend.Calls())

	actions, err := s.RecentActions(ctx, service.ActionFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, model.ActionApprove, actions[0].Type)
}
