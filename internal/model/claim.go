package model

import (
	"time"
)

// ProviderRole tags the kind of provider that submitted a claim.
type ProviderRole string

// Known provider roles. Anything else, including an empty role, belongs to RoleOther.
const (
	RoleDoctor          ProviderRole = "DOCTOR"
	RolePharmacist      ProviderRole = "PHARMACIST"
	RoleLabTech         ProviderRole = "LAB_TECH"
	RoleRadiologist     ProviderRole = "RADIOLOGIST"
	RoleInsuranceClient ProviderRole = "INSURANCE_CLIENT"

	// RoleOther is synthetic: the backend never sends it.
	RoleOther ProviderRole = "OTHER"
)

// KnownRoles lists the roles the dashboard recognizes, in display order.
var KnownRoles = []ProviderRole{
	RoleDoctor,
	RolePharmacist,
	RoleLabTech,
	RoleRadiologist,
	RoleInsuranceClient,
}

// IsKnown reports whether the role is one of KnownRoles.
func (r ProviderRole) IsKnown() bool {
	switch r {
	case RoleDoctor, RolePharmacist, RoleLabTech, RoleRadiologist, RoleInsuranceClient:
		return true
	default:
		return false
	}
}

// Category collapses absent and unrecognized roles into RoleOther.
func (r ProviderRole) Category() ProviderRole {
	if r.IsKnown() {
		return r
	}
	return RoleOther
}

// Status is the review bucket a claim sits in. It is not carried on the claim
// itself; it is implied by which snapshot partition holds the claim.
type Status string

// Claim statuses, in the order partitions are presented.
const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPending  Status = "pending"
)

// Statuses lists every partition status in presentation order.
var Statuses = []Status{StatusApproved, StatusRejected, StatusPending}

// Claim is a read-only claim record as delivered by the report endpoint.
type Claim struct {
	CreatedAt       *time.Time   `json:"createdAt,omitempty"`
	Amount          *float64     `json:"amount,omitempty"`
	ID              string       `json:"id"`
	MemberName      string       `json:"memberName,omitempty"`
	PolicyName      string       `json:"policyName,omitempty"`
	Description     string       `json:"description,omitempty"`
	ProviderName    string       `json:"providerName,omitempty"`
	ProviderRole    ProviderRole `json:"providerRole,omitempty"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
}

// AmountValue returns the claim amount, or 0 when the backend sent none.
func (c Claim) AmountValue() float64 {
	if c.Amount == nil {
		return 0
	}
	return *c.Amount
}

// HasAmount reports whether the backend sent an amount.
func (c Claim) HasAmount() bool {
	return c.Amount != nil
}

// CreatedTime returns the submission time, or the Unix epoch when the claim
// has no timestamp.
func (c Claim) CreatedTime() time.Time {
	if c.CreatedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *c.CreatedAt
}
