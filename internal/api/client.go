package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	reportPath     = "/claims/report"
	reportCacheKey = "claims-report"
	maxErrorBody   = 4 << 10
)

// Client talks to the claims backend over HTTP/JSON.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	logger     *slog.Logger
	userAgent  string
	retry      service.RetryOptions
	cacheTTL   time.Duration
}

// NewClient creates a backend client. The bearer token, when set, is attached to
// every request.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cfg.Token,
				TokenType:   "Bearer",
			}),
			Base: http.DefaultTransport,
		}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter:   rate.NewLimiter(limit, burst),
		cache:     gocache.New(cfg.CacheTTL, time.Minute),
		logger:    slog.Default().With("component", "api"),
		userAgent: cfg.UserAgent,
		retry:     cfg.Retry,
		cacheTTL:  cfg.CacheTTL,
	}, nil
}

// FetchClaimsReport fetches all three partitions in one request. A response
// younger than the cache TTL is served from memory.
func (c *Client) FetchClaimsReport(ctx context.Context) (model.Snapshot, error) {
	if c.cacheTTL > 0 {
		if cached, found := c.cache.Get(reportCacheKey); found {
			c.logger.Debug("Serving claims report from cache")
			return cached.(model.Snapshot), nil
		}
	}

	var snap model.Snapshot
	err := c.do(ctx, http.MethodGet, reportPath, nil, &snap, true)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to fetch claims report: %w", err)
	}

	snap = normalize(snap)
	snap.FetchedAt = time.Now()

	c.logger.Info("Fetched claims report",
		"approved", len(snap.Approved),
		"rejected", len(snap.Rejected),
		"pending", len(snap.Pending))

	if c.cacheTTL > 0 {
		c.cache.Set(reportCacheKey, snap, c.cacheTTL)
	}
	return snap, nil
}

// ReturnForReview sends a claim back for review with a reason.
func (c *Client) ReturnForReview(ctx context.Context, claimID, reason string) error {
	return c.mutate(ctx, claimID, "return-for-review", map[string]string{"reason": reason})
}

// MarkAsPaid marks a claim as paid.
func (c *Client) MarkAsPaid(ctx context.Context, claimID string) error {
	return c.mutate(ctx, claimID, "mark-paid", nil)
}

// Approve approves a claim.
func (c *Client) Approve(ctx context.Context, claimID string) error {
	return c.mutate(ctx, claimID, "approve", nil)
}

// Reject rejects a claim with a reason.
func (c *Client) Reject(ctx context.Context, claimID, reason string) error {
	return c.mutate(ctx, claimID, "reject", map[string]string{"reason": reason})
}

// FlushCache forgets any cached report so the next fetch hits the backend.
// Session.Reload calls it before a refresh the user asked for.
func (c *Client) FlushCache() {
	c.cache.Flush()
}

func (c *Client) mutate(ctx context.Context, claimID, action string, body any) error {
	if strings.TrimSpace(claimID) == "" {
		return fmt.Errorf("%w: claim id is required", common.ErrMutationRejected)
	}

	path := fmt.Sprintf("/claims/%s/%s", url.PathEscape(claimID), action)
	if err := c.do(ctx, http.MethodPost, path, body, nil, false); err != nil {
		return fmt.Errorf("failed to %s claim %s: %w", strings.ReplaceAll(action, "-", " "), claimID, err)
	}

	// The backend state changed; a cached report would hide it.
	c.cache.Flush()

	c.logger.Info("Claim mutation accepted", "claim_id", claimID, "action", action)
	return nil
}

// do sends one request with rate limiting and retries, decoding a JSON response
// into out when out is non-nil. A request that is not idempotent is only resent
// after a 429, since any other failure may have reached the backend.
func (c *Client) do(ctx context.Context, method, path string, body, out any, idempotent bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	endpoint := c.baseURL.JoinPath(path)

	return common.WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return common.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		requestID := uuid.NewString()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("Sending request", "method", method, "path", path, "request_id", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return common.Permanent(ctx.Err())
			}
			err = fmt.Errorf("%w: %w", common.ErrProviderUnavailable, err)
			if !idempotent {
				return common.Permanent(err)
			}
			return err
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				c.logger.Warn("Failed to close response body", "error", closeErr)
			}
		}()

		if err := checkStatus(resp); err != nil {
			if !idempotent && !errors.Is(err, common.ErrRateLimit) {
				return common.Permanent(err)
			}
			return err
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}, c.retry)
}

// checkStatus maps HTTP status codes onto the application's error sentinels.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := readErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrRateLimit, message)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", common.ErrProviderUnavailable, resp.StatusCode, message)
	case resp.StatusCode == http.StatusNotFound:
		return common.Permanent(fmt.Errorf("%w: %s", common.ErrNotFound, message))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return common.Permanent(fmt.Errorf("%w: status %d", common.ErrUnauthorized, resp.StatusCode))
	default:
		return common.Permanent(common.NewUserError(message,
			fmt.Errorf("%w: status %d", common.ErrMutationRejected, resp.StatusCode)))
	}
}

// readErrorMessage extracts {"message": "..."} or {"error": "..."} from an error
// body, falling back to the raw text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return "unreadable response body"
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "empty response"
	}
	return text
}

// normalize replaces absent partitions with empty ones.
func normalize(snap model.Snapshot) model.Snapshot {
	if snap.Approved == nil {
		snap.Approved = []model.Claim{}
	}
	if snap.Rejected == nil {
		snap.Rejected = []model.Claim{}
	}
	if snap.Pending == nil {
		snap.Pending = []model.Claim{}
	}
	return snap
}

var (
	_ service.ClaimsBackend = (*Client)(nil)
	_ service.CacheFlusher  = (*Client)(nil)
)
