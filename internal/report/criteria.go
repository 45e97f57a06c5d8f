// Package report implements the claims-report pipeline: filtering, stable
// sorting and aggregation of a claims snapshot under a set of user criteria.
//
// Every function in this package is pure. Callers own the Criteria value and the
// snapshot; nothing here mutates either.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
)

// DefaultAmountCeiling is the amount upper bound used when a snapshot carries no amounts.
const DefaultAmountCeiling = 10000.0

// amountStep is the granularity the observed maximum is rounded up to.
const amountStep = 100.0

// StatusScope selects which partitions take part in filtering, sorting and aggregation.
type StatusScope string

// Status scopes.
const (
	ScopeAll      StatusScope = "all"
	ScopeApproved StatusScope = "approved"
	ScopeRejected StatusScope = "rejected"
	ScopePending  StatusScope = "pending"
)

// Scopes lists every scope in the order the UI cycles through them.
var Scopes = []StatusScope{ScopeAll, ScopeApproved, ScopeRejected, ScopePending}

// Includes reports whether the partition with the given status is in scope.
func (s StatusScope) Includes(status model.Status) bool {
	if s == ScopeAll {
		return true
	}
	return string(s) == string(status)
}

// SortKey selects the ordering applied to each filtered partition.
type SortKey string

// Sort keys.
const (
	SortDateDesc      SortKey = "dateDesc"
	SortDateAsc       SortKey = "dateAsc"
	SortAmountDesc    SortKey = "amountDesc"
	SortAmountAsc     SortKey = "amountAsc"
	SortMemberNameAsc SortKey = "memberNameAsc"
)

// SortKeys lists every sort key in the order the UI cycles through them.
var SortKeys = []SortKey{SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc, SortMemberNameAsc}

// ProviderFilter is either ProviderAll, one of model.KnownRoles, or model.RoleOther.
type ProviderFilter string

// ProviderAll disables the provider-role predicate.
const ProviderAll ProviderFilter = "all"

// ProviderFilters lists every provider filter in the order the UI cycles through them.
var ProviderFilters = func() []ProviderFilter {
	filters := []ProviderFilter{ProviderAll}
	for _, role := range model.KnownRoles {
		filters = append(filters, ProviderFilter(role))
	}
	return append(filters, ProviderFilter(model.RoleOther))
}()

// PolicyAll disables the policy predicate.
const PolicyAll = "all"

// Criteria is the full set of user-adjustable filter and sort parameters for one
// report view. Use NewCriteria to get defaults and the setters to change it so the
// amount invariant holds.
type Criteria struct {
	DateFrom       *time.Time
	DateTo         *time.Time
	SearchQuery    string
	StatusScope    StatusScope
	ProviderFilter ProviderFilter
	PolicyFilter   string
	SortKey        SortKey
	AmountMin      float64
	AmountMax      float64
	ceiling        float64
}

// NewCriteria returns the default criteria for a snapshot whose amount ceiling is
// given (see MaxObservedAmount).
func NewCriteria(ceiling float64) Criteria {
	if ceiling <= 0 {
		ceiling = DefaultAmountCeiling
	}
	return Criteria{
		StatusScope:    ScopeAll,
		ProviderFilter: ProviderAll,
		PolicyFilter:   PolicyAll,
		SortKey:        SortDateDesc,
		AmountMin:      0,
		AmountMax:      ceiling,
		ceiling:        ceiling,
	}
}

// Ceiling returns the largest amount the range may be set to.
func (c Criteria) Ceiling() float64 {
	return c.ceiling
}

// SetSearchQuery sets the free-text search.
func (c *Criteria) SetSearchQuery(query string) {
	c.SearchQuery = query
}

// SetStatusScope sets which partitions participate.
func (c *Criteria) SetStatusScope(scope StatusScope) {
	c.StatusScope = scope
}

// SetProviderFilter sets the provider-role predicate.
func (c *Criteria) SetProviderFilter(filter ProviderFilter) {
	c.ProviderFilter = filter
}

// SetPolicyFilter sets the policy predicate. An empty name means all policies.
func (c *Criteria) SetPolicyFilter(policy string) {
	if policy == "" {
		policy = PolicyAll
	}
	c.PolicyFilter = policy
}

// SetAmountRange sets the inclusive amount range. Both ends are clamped to
// [0, Ceiling()] and a reversed pair is swapped.
func (c *Criteria) SetAmountRange(minAmount, maxAmount float64) {
	minAmount = clamp(minAmount, 0, c.ceiling)
	maxAmount = clamp(maxAmount, 0, c.ceiling)
	if minAmount > maxAmount {
		minAmount, maxAmount = maxAmount, minAmount
	}
	c.AmountMin = minAmount
	c.AmountMax = maxAmount
}

// SetDateFrom sets the inclusive lower date bound. Nil clears it.
func (c *Criteria) SetDateFrom(date *time.Time) {
	c.DateFrom = date
}

// SetDateTo sets the inclusive upper date bound. Nil clears it.
func (c *Criteria) SetDateTo(date *time.Time) {
	c.DateTo = date
}

// SetSortKey sets the ordering.
func (c *Criteria) SetSortKey(key SortKey) {
	c.SortKey = key
}

// Clear resets every dimension, status scope included, to defaults in one step.
func (c *Criteria) Clear(defaults Criteria) {
	*c = defaults
}

// Rebase moves the criteria onto a new amount ceiling after a fetch. A range whose
// upper end sat at the old ceiling follows the new one; everything else is clamped.
func (c *Criteria) Rebase(ceiling float64) {
	if ceiling <= 0 {
		ceiling = DefaultAmountCeiling
	}
	followCeiling := c.AmountMax >= c.ceiling
	c.ceiling = ceiling

	maxAmount := c.AmountMax
	if followCeiling {
		maxAmount = ceiling
	}
	c.SetAmountRange(c.AmountMin, maxAmount)
}

// MaxObservedAmount returns the largest claim amount across all three partitions,
// rounded up to the next multiple of 100, or DefaultAmountCeiling when that is zero.
func MaxObservedAmount(snap model.Snapshot) float64 {
	highest := 0.0
	for _, status := range model.Statuses {
		for _, claim := range snap.Partition(status) {
			highest = math.Max(highest, claim.AmountValue())
		}
	}

	ceiling := math.Ceil(highest/amountStep) * amountStep
	if ceiling <= 0 {
		return DefaultAmountCeiling
	}
	return ceiling
}

// StartOfDay returns midnight at the start of the date, in the date's location.
func StartOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// EndOfDay returns 23:59:59.999 on the date, in the date's location.
func EndOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), date.Location())
}

// ParseDate parses a YYYY-MM-DD calendar date in the local time zone.
// An empty string parses to nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrInvalidCriteria, value)
	}
	return &date, nil
}

// ParseStatusScope validates a status scope name.
func ParseStatusScope(value string) (StatusScope, error) {
	for _, scope := range Scopes {
		if strings.EqualFold(string(scope), value) {
			return scope, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status scope %q", common.ErrInvalidCriteria, value)
}

// ParseSortKey validates a sort key name.
func ParseSortKey(value string) (SortKey, error) {
	for _, key := range SortKeys {
		if strings.EqualFold(string(key), value) {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort key %q", common.ErrInvalidCriteria, value)
}

// ParseProviderFilter validates a provider filter name.
func ParseProviderFilter(value string) (ProviderFilter, error) {
	for _, filter := range ProviderFilters {
		if strings.EqualFold(string(filter), value) {
			return filter, nil
		}
	}
	return "", fmt.Errorf("%w: unknown provider role %q", common.ErrInvalidCriteria, value)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
