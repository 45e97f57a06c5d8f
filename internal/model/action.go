package model

import "time"

// ActionType names a back-office mutation on a single claim.
type ActionType string

// Supported claim mutations.
const (
	ActionApprove         ActionType = "approve"
	ActionReject          ActionType = "reject"
	ActionReturnForReview ActionType = "return_for_review"
	ActionMarkPaid        ActionType = "mark_paid"
)

// Action records a mutation the backend confirmed.
type Action struct {
	PerformedAt time.Time
	ClaimID     string
	Type        ActionType
	Reason      string
	ID          int64
}

// RequiresReason reports whether the backend rejects the action without a reason.
func (t ActionType) RequiresReason() bool {
	return t == ActionReject || t == ActionReturnForReview
}
