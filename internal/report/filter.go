package report

import (
	"strings"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Matches reports whether a claim passes every predicate in the criteria.
// Absent claim fields never cause a panic; they take their zero defaults.
func Matches(claim model.Claim, c Criteria) bool {
	return matchesSearch(claim, c.SearchQuery) &&
		matchesPolicy(claim, c.PolicyFilter) &&
		matchesProvider(claim, c.ProviderFilter) &&
		matchesAmount(claim, c.AmountMin, c.AmountMax) &&
		matchesDate(claim, c)
}

// Filter returns the claims that match, in their input order. The input slice is
// not modified and the result never aliases it.
func Filter(claims []model.Claim, c Criteria) []model.Claim {
	filtered := make([]model.Claim, 0, len(claims))
	for _, claim := range claims {
		if Matches(claim, c) {
			filtered = append(filtered, claim)
		}
	}
	return filtered
}

func matchesSearch(claim model.Claim, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)

	for _, field := range []string{
		claim.MemberName,
		claim.PolicyName,
		claim.Description,
		claim.ProviderName,
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func matchesPolicy(claim model.Claim, policy string) bool {
	return policy == "" || policy == PolicyAll || claim.PolicyName == policy
}

func matchesProvider(claim model.Claim, filter ProviderFilter) bool {
	switch filter {
	case "", ProviderAll:
		return true
	case ProviderFilter(model.RoleOther):
		return !claim.ProviderRole.IsKnown()
	default:
		return claim.ProviderRole == model.ProviderRole(filter)
	}
}

func matchesAmount(claim model.Claim, minAmount, maxAmount float64) bool {
	amount := claim.AmountValue()
	return amount >= minAmount && amount <= maxAmount
}

func matchesDate(claim model.Claim, c Criteria) bool {
	if c.DateFrom == nil && c.DateTo == nil {
		return true
	}
	if claim.CreatedAt == nil {
		return false
	}

	created := *claim.CreatedAt
	if c.DateFrom != nil && created.Before(StartOfDay(*c.DateFrom)) {
		return false
	}
	if c.DateTo != nil && created.After(EndOfDay(*c.DateTo)) {
		return false
	}
	return true
}
