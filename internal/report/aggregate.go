package report

import "github.com/Veraticus/claimdesk/internal/model"

// Summary holds the counts and money totals of the claims currently visible.
// Amounts are raw float64 sums; round only when presenting them.
type Summary struct {
	TotalClaims         int
	ApprovedClaims      int
	RejectedClaims      int
	PendingClaims       int
	TotalApprovedAmount float64
	TotalRejectedAmount float64
	TotalPendingAmount  float64
}

// Aggregate derives the summary of already-filtered partitions.
func Aggregate(approved, rejected, pending []model.Claim) Summary {
	return Summary{
		TotalClaims:         len(approved) + len(rejected) + len(pending),
		ApprovedClaims:      len(approved),
		RejectedClaims:      len(rejected),
		PendingClaims:       len(pending),
		TotalApprovedAmount: sumAmounts(approved),
		TotalRejectedAmount: sumAmounts(rejected),
		TotalPendingAmount:  sumAmounts(pending),
	}
}

// IsEmpty returns true if no claim is visible.
func (s Summary) IsEmpty() bool {
	return s.TotalClaims == 0
}

func sumAmounts(claims []model.Claim) float64 {
	total := 0.0
	for _, claim := range claims {
		total += claim.AmountValue()
	}
	return total
}
