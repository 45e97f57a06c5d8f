package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidClaim    = errors.New("invalid claim")
	ErrInvalidAction   = errors.New("invalid action")
	ErrDuplicateClaims = errors.New("claim appears in more than one partition")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// dropUnidentifiedClaims returns snap without the claims that have no ID, and
// how many were removed. Such claims cannot be acted on or looked up.
func dropUnidentifiedClaims(snap model.Snapshot) (model.Snapshot, int) {
	dropped := 0
	keep := func(claims []model.Claim) []model.Claim {
		if claims == nil {
			return nil
		}
		kept := make([]model.Claim, 0, len(claims))
		for _, claim := range claims {
			if strings.TrimSpace(claim.ID) == "" {
				dropped++
				continue
			}
			kept = append(kept, claim)
		}
		return kept
	}

	snap.Approved = keep(snap.Approved)
	snap.Rejected = keep(snap.Rejected)
	snap.Pending = keep(snap.Pending)
	return snap, dropped
}

// validateSnapshot checks that every claim has an ID and that partitions are disjoint.
func validateSnapshot(snap model.Snapshot) error {
	seen := make(map[string]model.Status, snap.Len())
	for _, status := range model.Statuses {
		for i, claim := range snap.Partition(status) {
			if strings.TrimSpace(claim.ID) == "" {
				return fmt.Errorf("%w: %s claim at index %d has no ID", ErrInvalidClaim, status, i)
			}
			if other, ok := seen[claim.ID]; ok {
				return fmt.Errorf("%w: %s in %s and %s", ErrDuplicateClaims, claim.ID, other, status)
			}
			seen[claim.ID] = status
		}
	}
	return nil
}

func validateAction(action *model.Action) error {
	if action == nil {
		return fmt.Errorf("%w: action", ErrNilParameter)
	}
	if strings.TrimSpace(action.ClaimID) == "" {
		return fmt.Errorf("%w: missing claim ID", ErrInvalidAction)
	}
	switch action.Type {
	case model.ActionApprove, model.ActionReject, model.ActionReturnForReview, model.ActionMarkPaid:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, action.Type)
	}
	if action.Type.RequiresReason() && strings.TrimSpace(action.Reason) == "" {
		return fmt.Errorf("%w: %s requires a reason", ErrInvalidAction, action.Type)
	}
	return nil
}
