package report

// CountActive returns how many of the six countable dimensions differ from
// defaults: search, provider role, policy, amount range, date bounds and sort key.
// Status scope is not counted; see IsActive.
func CountActive(c, defaults Criteria) int {
	count := 0
	if c.SearchQuery != "" {
		count++
	}
	if c.ProviderFilter != defaults.ProviderFilter {
		count++
	}
	if c.PolicyFilter != defaults.PolicyFilter {
		count++
	}
	if c.AmountMin > defaults.AmountMin || c.AmountMax < defaults.AmountMax {
		count++
	}
	if c.DateFrom != nil || c.DateTo != nil {
		count++
	}
	if c.SortKey != defaults.SortKey {
		count++
	}
	return count
}

// IsActive reports whether anything, status scope included, differs from defaults.
func IsActive(c, defaults Criteria) bool {
	return CountActive(c, defaults) > 0 || c.StatusScope != defaults.StatusScope
}
