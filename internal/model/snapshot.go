package model

import "time"

// Snapshot is one atomic fetch of the claims report: three disjoint partitions.
type Snapshot struct {
	FetchedAt time.Time `json:"-"`
	Approved  []Claim   `json:"approvedList"`
	Rejected  []Claim   `json:"rejectedList"`
	Pending   []Claim   `json:"pendingList"`
}

// Partition returns the claims held under the given status.
func (s Snapshot) Partition(status Status) []Claim {
	switch status {
	case StatusApproved:
		return s.Approved
	case StatusRejected:
		return s.Rejected
	case StatusPending:
		return s.Pending
	default:
		return nil
	}
}

// Len returns the number of claims across all partitions.
func (s Snapshot) Len() int {
	return len(s.Approved) + len(s.Rejected) + len(s.Pending)
}

// IsEmpty returns true if no partition holds any claim.
func (s Snapshot) IsEmpty() bool {
	return s.Len() == 0
}

// All returns every claim, approved first, then rejected, then pending.
func (s Snapshot) All() []Claim {
	all := make([]Claim, 0, s.Len())
	all = append(all, s.Approved...)
	all = append(all, s.Rejected...)
	all = append(all, s.Pending...)
	return all
}

// Find looks a claim up by ID and returns it with the status of its partition.
func (s Snapshot) Find(id string) (Claim, Status, bool) {
	for _, status := range Statuses {
		for _, c := range s.Partition(status) {
			if c.ID == id {
				return c, status, true
			}
		}
	}
	return Claim{}, "", false
}
