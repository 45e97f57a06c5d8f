package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, validateContext(context.Background()))
	assert.NoError(t, validateContext(canceled), "canceled contexts are still valid")
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("a1", "claimID"))

	err := validateString("  ", "claimID")
	assert.ErrorIs(t, err, ErrEmptyString)
	assert.Contains(t, err.Error(), "claimID")
}

func TestValidateSnapshot(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		snap    model.Snapshot
	}{
		{
			name: "sample",
			snap: testutil.SampleSnapshot(),
		},
		{
			name: "empty",
			snap: model.Snapshot{},
		},
		{
			name: "missing ID",
			snap: model.Snapshot{
				Pending: []model.Claim{testutil.NewClaim("p1").Build(), testutil.NewClaim(" ").Build()},
			},
			wantErr: ErrInvalidClaim,
		},
		{
			name: "same claim in two partitions",
			snap: model.Snapshot{
				Approved: []model.Claim{testutil.NewClaim("c1").Build()},
				Rejected: []model.Claim{testutil.NewClaim("c1").Build()},
			},
			wantErr: ErrDuplicateClaims,
		},
		{
			name: "same claim twice in one partition",
			snap: model.Snapshot{
				Pending: []model.Claim{testutil.NewClaim("c1").Build(), testutil.NewClaim("c1").Build()},
			},
			wantErr: ErrDuplicateClaims,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSnapshot(tt.snap)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDropUnidentifiedClaims(t *testing.T) {
	snap := model.Snapshot{
		Approved: []model.Claim{testutil.NewClaim("").Build()},
		Pending:  []model.Claim{testutil.NewClaim("p1").Build(), testutil.NewClaim(" ").Build()},
	}

	cleaned, dropped := dropUnidentifiedClaims(snap)
	assert.Equal(t, 2, dropped)
	assert.Empty(t, cleaned.Approved)
	assert.Nil(t, cleaned.Rejected)
	assert.Equal(t, []string{"p1"}, testutil.IDs(cleaned.Pending))
	assert.NoError(t, validateSnapshot(cleaned))
	assert.Len(t, snap.Pending, 2, "input is untouched")

	_, dropped = dropUnidentifiedClaims(testutil.SampleSnapshot())
	assert.Zero(t, dropped)
}

func TestValidateAction(t *testing.T) {
	now := time.Now()
	tests := []struct {
		action  *model.Action
		wantErr error
		name    string
	}{
		{
			name:   "approve",
			action: &model.Action{ClaimID: "p1", Type: model.ActionApprove, PerformedAt: now},
		},
		{
			name:   "mark paid",
			action: &model.Action{ClaimID: "a1", Type: model.ActionMarkPaid, PerformedAt: now},
		},
		{
			name:   "reject with reason",
			action: &model.Action{ClaimID: "p1", Type: model.ActionReject, Reason: "duplicate", PerformedAt: now},
		},
		{
			name:    "nil",
			wantErr: ErrNilParameter,
		},
		{
			name:    "missing claim",
			action:  &model.Action{Type: model.ActionApprove},
			wantErr: ErrInvalidAction,
		},
		{
			name:    "unknown type",
			action:  &model.Action{ClaimID: "p1", Type: "escalate"},
			wantErr: ErrInvalidAction,
		},
		{
			name:    "return without reason",
			action:  &model.Action{ClaimID: "r1", Type: model.ActionReturnForReview, Reason: "  "},
			wantErr: ErrInvalidAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAction(tt.action)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
