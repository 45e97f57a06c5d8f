package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
)

// ClaimBuilder provides a fluent interface for constructing test claims.
//
// Example:
//
//	claim := testutil.NewClaim("c1").
//		WithMember("Jane Roe").
//		WithAmount(150).
//		WithRole(model.RoleDoctor).
//		Build()
type ClaimBuilder struct {
	claim model.Claim
}

// NewClaim starts a claim with the given ID and no optional fields.
func NewClaim(id string) *ClaimBuilder {
	return &ClaimBuilder{claim: model.Claim{ID: id}}
}

// WithMember sets the member name.
func (b *ClaimBuilder) WithMember(name string) *ClaimBuilder {
	b.claim.MemberName = name
	return b
}

// WithPolicy sets the policy name.
func (b *ClaimBuilder) WithPolicy(name string) *ClaimBuilder {
	b.claim.PolicyName = name
	return b
}

// WithDescription sets the description.
func (b *ClaimBuilder) WithDescription(description string) *ClaimBuilder {
	b.claim.Description = description
	return b
}

// WithProvider sets the provider name and role.
func (b *ClaimBuilder) WithProvider(name string, role model.ProviderRole) *ClaimBuilder {
	b.claim.ProviderName = name
	b.claim.ProviderRole = role
	return b
}

// WithRole sets only the provider role.
func (b *ClaimBuilder) WithRole(role model.ProviderRole) *ClaimBuilder {
	b.claim.ProviderRole = role
	return b
}

// WithAmount sets the amount.
func (b *ClaimBuilder) WithAmount(amount float64) *ClaimBuilder {
	b.claim.Amount = &amount
	return b
}

// WithCreatedAt sets the submission time.
func (b *ClaimBuilder) WithCreatedAt(created time.Time) *ClaimBuilder {
	b.claim.CreatedAt = &created
	return b
}

// WithCreatedOn sets the submission time to noon UTC on the given date.
func (b *ClaimBuilder) WithCreatedOn(year int, month time.Month, day int) *ClaimBuilder {
	return b.WithCreatedAt(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// WithRejectionReason sets the rejection reason.
func (b *ClaimBuilder) WithRejectionReason(reason string) *ClaimBuilder {
	b.claim.RejectionReason = reason
	return b
}

// Build returns the claim.
func (b *ClaimBuilder) Build() model.Claim {
	return b.claim
}

// Amounts builds one claim per amount, with IDs prefix-0, prefix-1, and so on.
func Amounts(prefix string, amounts ...float64) []model.Claim {
	claims := make([]model.Claim, len(amounts))
	for i, amount := range amounts {
		claims[i] = NewClaim(fmt.Sprintf("%s-%d", prefix, i)).WithAmount(amount).Build()
	}
	return claims
}

// IDs returns the IDs of the claims, in order.
func IDs(claims []model.Claim) []string {
	ids := make([]string, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	return ids
}

// SampleSnapshot returns a small snapshot that exercises every filter dimension:
// all provider roles, two policies, undated claims and claims without amounts.
func SampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Approved: []model.Claim{
			NewClaim("a1").WithMember("Alice Moreau").WithPolicy("Acme Health").
				WithDescription("Annual checkup").WithProvider("Dr. Grey", model.RoleDoctor).
				WithAmount(120).WithCreatedOn(2024, time.January, 5).Build(),
			NewClaim("a2").WithMember("bob Stone").WithPolicy("Globex").
				WithDescription("Prescription refill").WithProvider("City Pharmacy", model.RolePharmacist).
				WithAmount(45.5).WithCreatedOn(2024, time.February, 10).Build(),
			NewClaim("a3").WithMember("Chloé Durand").WithPolicy("Acme Health").
				WithDescription("X-ray").WithProvider("Imaging Center", model.RoleRadiologist).
				WithAmount(980).Build(),
		},
		Rejected: []model.Claim{
			NewClaim("r1").WithMember("Dan Wu").WithPolicy("Globex").
				WithDescription("Blood panel").WithProvider("North Lab", model.RoleLabTech).
				WithAmount(310).WithCreatedOn(2024, time.March, 1).
				WithRejectionReason("not covered").Build(),
			NewClaim("r2").WithMember("Eve Park").WithPolicy("Acme Health").
				WithProvider("Broker Co", "UNKNOWN_X").
				WithAmount(75).WithCreatedOn(2023, time.December, 30).
				WithRejectionReason("duplicate").Build(),
		},
		Pending: []model.Claim{
			NewClaim("p1").WithMember("Frank Ito").WithPolicy("Globex").
				WithDescription("Policy holder reimbursement").WithProvider("Frank Ito", model.RoleInsuranceClient).
				WithAmount(1250).WithCreatedOn(2024, time.April, 20).Build(),
			NewClaim("p2").WithDescription("Walk-in visit").Build(),
		},
	}
}
