package api

import (
	"context"
	"sync"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

// MockClient is a mock implementation of service.ClaimsBackend for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	FetchClaimsReportFn func(ctx context.Context) (model.Snapshot, error)
	ReturnForReviewFn   func(ctx context.Context, claimID, reason string) error
	MarkAsPaidFn        func(ctx context.Context, claimID string) error
	ApproveFn           func(ctx context.Context, claimID string) error
	RejectFn            func(ctx context.Context, claimID, reason string) error

	// Call tracking
	FetchCalls    int
	FlushCalls    int
	MutationCalls []MutationCall

	mu sync.Mutex
}

// MutationCall records the parameters of a mutation call.
type MutationCall struct {
	Action  model.ActionType
	ClaimID string
	Reason  string
}

// NewMockClient creates a mock that serves snap and accepts every mutation.
func NewMockClient(snap model.Snapshot) *MockClient {
	return &MockClient{
		FetchClaimsReportFn: func(context.Context) (model.Snapshot, error) {
			return snap, nil
		},
		MutationCalls: []MutationCall{},
	}
}

// FetchClaimsReport implements service.ReportProvider.
func (m *MockClient) FetchClaimsReport(ctx context.Context) (model.Snapshot, error) {
	m.mu.Lock()
	m.FetchCalls++
	fn := m.FetchClaimsReportFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return model.Snapshot{}, nil
}

// ReturnForReview implements service.MutationProvider.
func (m *MockClient) ReturnForReview(ctx context.Context, claimID, reason string) error {
	m.record(model.ActionReturnForReview, claimID, reason)
	if m.ReturnForReviewFn != nil {
		return m.ReturnForReviewFn(ctx, claimID, reason)
	}
	return nil
}

// MarkAsPaid implements service.MutationProvider.
func (m *MockClient) MarkAsPaid(ctx context.Context, claimID string) error {
	m.record(model.ActionMarkPaid, claimID, "")
	if m.MarkAsPaidFn != nil {
		return m.MarkAsPaidFn(ctx, claimID)
	}
	return nil
}

// Approve implements service.MutationProvider.
func (m *MockClient) Approve(ctx context.Context, claimID string) error {
	m.record(model.ActionApprove, claimID, "")
	if m.ApproveFn != nil {
		return m.ApproveFn(ctx, claimID)
	}
	return nil
}

// Reject implements service.MutationProvider.
func (m *MockClient) Reject(ctx context.Context, claimID, reason string) error {
	m.record(model.ActionReject, claimID, reason)
	if m.RejectFn != nil {
		return m.RejectFn(ctx, claimID, reason)
	}
	return nil
}

// FlushCache implements service.CacheFlusher.
func (m *MockClient) FlushCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
}

// Flushes returns how many times the cache was flushed.
func (m *MockClient) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FlushCalls
}

// Calls returns a copy of the recorded mutation calls.
func (m *MockClient) Calls() []MutationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MutationCall(nil), m.MutationCalls...)
}

// Fetches returns how many times the report was fetched.
func (m *MockClient) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchCalls
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls = 0
	m.FlushCalls = 0
	m.MutationCalls = []MutationCall{}
}

func (m *MockClient) record(action model.ActionType, claimID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MutationCalls = append(m.MutationCalls, MutationCall{Action: action, ClaimID: claimID, Reason: reason})
}

// Ensure MockClient implements the backend interfaces.
var (
	_ service.ClaimsBackend = (*MockClient)(nil)
	_ service.CacheFlusher  = (*MockClient)(nil)
)
