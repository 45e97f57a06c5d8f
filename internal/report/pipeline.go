package report

import (
	"slices"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Result is one full recomputation of the report: the filtered and sorted
// partitions and their summary.
type Result struct {
	Approved []model.Claim
	Rejected []model.Claim
	Pending  []model.Claim
	Summary  Summary
}

// Row is a visible claim together with the partition it came from.
type Row struct {
	Status model.Status
	Claim  model.Claim
}

// Apply runs filter, sort and aggregate over the snapshot, in that order.
// Partitions outside the status scope come back empty; the snapshot itself is
// left intact so a later scope change can include them again.
func Apply(snap model.Snapshot, c Criteria) Result {
	result := Result{
		Approved: selectPartition(snap, model.StatusApproved, c),
		Rejected: selectPartition(snap, model.StatusRejected, c),
		Pending:  selectPartition(snap, model.StatusPending, c),
	}
	result.Summary = Aggregate(result.Approved, result.Rejected, result.Pending)
	return result
}

func selectPartition(snap model.Snapshot, status model.Status, c Criteria) []model.Claim {
	if !c.StatusScope.Includes(status) {
		return []model.Claim{}
	}
	return SortClaims(Filter(snap.Partition(status), c), c.SortKey)
}

// Partition returns the filtered claims for a status.
func (r Result) Partition(status model.Status) []model.Claim {
	switch status {
	case model.StatusApproved:
		return r.Approved
	case model.StatusRejected:
		return r.Rejected
	case model.StatusPending:
		return r.Pending
	default:
		return nil
	}
}

// Rows flattens the visible claims, approved first, then rejected, then pending.
// Each partition keeps its own sort order.
func (r Result) Rows() []Row {
	rows := make([]Row, 0, r.Summary.TotalClaims)
	for _, status := range model.Statuses {
		for _, claim := range r.Partition(status) {
			rows = append(rows, Row{Status: status, Claim: claim})
		}
	}
	return rows
}

// ObservedPolicies returns the distinct non-empty policy names in the snapshot,
// sorted. These are the values a policy filter can usefully take.
func ObservedPolicies(snap model.Snapshot) []string {
	seen := make(map[string]bool)
	var policies []string
	for _, claim := range snap.All() {
		if claim.PolicyName == "" || seen[claim.PolicyName] {
			continue
		}
		seen[claim.PolicyName] = true
		policies = append(policies, claim.PolicyName)
	}
	slices.Sort(policies)
	return policies
}
