package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportJSON = `{
	"approvedList": [
		{"id": "a1", "memberName": "Alice", "policyName": "Acme Health", "amount": 120.5,
		 "providerRole": "DOCTOR", "createdAt": "2024-01-05T10:00:00Z"}
	],
	"rejectedList": [
		{"id": "r1", "rejectionReason": "duplicate"}
	]
}`

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Token = "secret-token"
	cfg.RequestsPerSecond = 0
	cfg.Retry = service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	return client
}

func TestFetchClaimsReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/claims/report", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reportJSON))
	})

	snap, err := client.FetchClaimsReport(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Approved, 1)
	assert.Equal(t, "Alice", snap.Approved[0].MemberName)
	assert.Equal(t, 120.5, snap.Approved[0].AmountValue())
	require.NotNil(t, snap.Approved[0].CreatedAt)
	assert.Equal(t, 2024, snap.Approved[0].CreatedAt.Year())

	require.Len(t, snap.Rejected, 1)
	assert.False(t, snap.Rejected[0].HasAmount())
	assert.Nil(t, snap.Rejected[0].CreatedAt)

	assert.NotNil(t, snap.Pending, "missing partition decodes to empty")
	assert.Empty(t, snap.Pending)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestFetchClaimsReport_CachedUntilMutation(t *testing.T) {
	var fetches atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fetches.Add(1)
			_, _ = w.Write([]byte(reportJSON))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	_, err := client.FetchClaimsReport(ctx)
	require.NoError(t, err)
	_, err = client.FetchClaimsReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())

	require.NoError(t, client.MarkAsPaid(ctx, "a1"))
	_, err = client.FetchClaimsReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestFlushCache_NextFetchHitsBackend(t *testing.T) {
	var fetches atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte(reportJSON))
	})
	ctx := context.Background()

	_, err := client.FetchClaimsReport(ctx)
	require.NoError(t, err)
	client.FlushCache()
	_, err = client.FetchClaimsReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestFetchClaimsReport_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(reportJSON))
	})

	snap, err := client.FetchClaimsReport(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Approved, 1)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchClaimsReport_GivesUp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := client.FetchClaimsReport(context.Background())
	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
}

func TestFetchClaimsReport_Unauthorized(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchClaimsReport(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestMutations(t *testing.T) {
	tests := []struct {
		name    string
		call    func(*Client) error
		path    string
		reason  string
		hasBody bool
	}{
		{"return for review", func(c *Client) error {
			return c.ReturnForReview(context.Background(), "c 1", "missing receipt")
		}, "/claims/c%201/return-for-review", "missing receipt", true},
		{"mark paid", func(c *Client) error {
			return c.MarkAsPaid(context.Background(), "c1")
		}, "/claims/c1/mark-paid", "", false},
		{"approve", func(c *Client) error {
			return c.Approve(context.Background(), "c1")
		}, "/claims/c1/approve", "", false},
		{"reject", func(c *Client) error {
			return c.Reject(context.Background(), "c1", "not covered")
		}, "/claims/c1/reject", "not covered", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.path, r.URL.EscapedPath())
				if tt.hasBody {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					var body map[string]string
					assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
					assert.Equal(t, tt.reason, body["reason"])
				}
				w.WriteHeader(http.StatusOK)
			})

			require.NoError(t, tt.call(client))
		})
	}
}

func TestMutation_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "claim is not pending"}`))
	})

	err := client.MarkAsPaid(context.Background(), "c1")
	assert.ErrorIs(t, err, common.ErrMutationRejected)
	assert.Equal(t, "claim is not pending", common.UserMessage(err))
}

func TestMutation_ServerErrorIsNotResent(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad gateway", http.StatusBadGateway},
		{"unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posts atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				if posts.Add(1) == 1 {
					http.Error(w, "upstream timeout", tt.status)
					return
				}
				w.WriteHeader(http.StatusOK)
			})

			err := client.MarkAsPaid(context.Background(), "c1")
			assert.ErrorIs(t, err, common.ErrProviderUnavailable)
			assert.NotErrorIs(t, err, common.ErrMaxRetries)
			assert.Equal(t, int32(1), posts.Load(), "the first POST may already have been applied")
		})
	}
}

func TestMutation_RateLimitIsRetried(t *testing.T) {
	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.Approve(context.Background(), "c1"))
	assert.Equal(t, int32(2), posts.Load())
}

func TestMutation_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	err := client.Approve(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMutation_EmptyID(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	err := client.MarkAsPaid(context.Background(), " ")
	assert.ErrorIs(t, err, common.ErrMutationRejected)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, common.ErrMissingConfig},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://claims" }, common.ErrInvalidConfig},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, common.ErrInvalidConfig},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, common.ErrInvalidConfig},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("https://claims.example.com/api")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
