package report

import (
	"testing"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_DefaultsShowEverything(t *testing.T) {
	snap := testutil.SampleSnapshot()
	result := Apply(snap, NewCriteria(MaxObservedAmount(snap)))

	assert.Len(t, result.Approved, 3)
	assert.Len(t, result.Rejected, 2)
	assert.Len(t, result.Pending, 2)
	assert.Equal(t, 7, result.Summary.TotalClaims)
	assert.InDelta(t, 1145.5, result.Summary.TotalApprovedAmount, 1e-9)
	assert.InDelta(t, 385.0, result.Summary.TotalRejectedAmount, 1e-9)
	assert.InDelta(t, 1250.0, result.Summary.TotalPendingAmount, 1e-9)
}

func TestApply_ScopeExcludesPartitions(t *testing.T) {
	snap := testutil.SampleSnapshot()
	c := NewCriteria(MaxObservedAmount(snap))
	c.SetStatusScope(ScopeRejected)

	result := Apply(snap, c)
	assert.Empty(t, result.Approved)
	assert.NotNil(t, result.Approved)
	assert.Empty(t, result.Pending)
	assert.Len(t, result.Rejected, 2)
	assert.Equal(t, 2, result.Summary.TotalClaims)
	assert.Zero(t, result.Summary.TotalApprovedAmount)

	c.SetStatusScope(ScopeAll)
	assert.Len(t, Apply(snap, c).Approved, 3, "snapshot survives a scope change")
}

func TestApply_SummaryMatchesPartitions(t *testing.T) {
	snap := testutil.SampleSnapshot()

	for _, scope := range Scopes {
		for _, key := range SortKeys {
			c := NewCriteria(MaxObservedAmount(snap))
			c.SetStatusScope(scope)
			c.SetSortKey(key)
			c.SetAmountRange(50, 1000)

			result := Apply(snap, c)
			s := result.Summary
			assert.Equal(t, len(result.Approved), s.ApprovedClaims)
			assert.Equal(t, len(result.Rejected), s.RejectedClaims)
			assert.Equal(t, len(result.Pending), s.PendingClaims)
			assert.Equal(t, s.ApprovedClaims+s.RejectedClaims+s.PendingClaims, s.TotalClaims)
			assert.Len(t, result.Rows(), s.TotalClaims)
		}
	}
}

func TestApply_ResultIsSubsetOfPartition(t *testing.T) {
	snap := testutil.SampleSnapshot()
	c := NewCriteria(MaxObservedAmount(snap))
	c.SetSearchQuery("e")

	result := Apply(snap, c)
	for _, status := range model.Statuses {
		for _, claim := range result.Partition(status) {
			_, got, ok := snap.Find(claim.ID)
			require.True(t, ok)
			assert.Equal(t, status, got)
		}
	}
}

func TestApply_DoesNotMutateSnapshot(t *testing.T) {
	snap := testutil.SampleSnapshot()
	before := testutil.IDs(snap.Approved)

	c := NewCriteria(MaxObservedAmount(snap))
	c.SetSortKey(SortAmountDesc)
	Apply(snap, c)

	assert.Equal(t, before, testutil.IDs(snap.Approved))
}

func TestResult_RowsOrder(t *testing.T) {
	snap := testutil.SampleSnapshot()
	c := NewCriteria(MaxObservedAmount(snap))
	c.SetSortKey(SortAmountAsc)

	rows := Apply(snap, c).Rows()
	require.Len(t, rows, 7)
	assert.Equal(t, model.StatusApproved, rows[0].Status)
	assert.Equal(t, "a2", rows[0].Claim.ID)
	assert.Equal(t, model.StatusRejected, rows[3].Status)
	assert.Equal(t, "r2", rows[3].Claim.ID)
	assert.Equal(t, model.StatusPending, rows[6].Status)
	assert.Equal(t, "p1", rows[6].Claim.ID)
}

func TestObservedPolicies(t *testing.T) {
	assert.Equal(t, []string{"Acme Health", "Globex"}, ObservedPolicies(testutil.SampleSnapshot()))
	assert.Empty(t, ObservedPolicies(model.Snapshot{}))
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, nil, nil)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, Summary{}, s)
}
