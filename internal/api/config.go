// Package api is the HTTP client for the claims backend: it fetches the claims
// report and performs review mutations.
package api

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/service"
)

// Config holds the configuration for the backend client.
type Config struct {
	BaseURL           string
	Token             string
	UserAgent         string
	Retry             service.RetryOptions
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a Config with sensible defaults. BaseURL has no default.
func DefaultConfig() Config {
	return Config{
		UserAgent:         "claimdesk",
		Retry:             service.DefaultRetryOptions(),
		Timeout:           15 * time.Second,
		CacheTTL:          10 * time.Second,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is required", common.ErrMissingConfig)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: api.base_url %q is not an http(s) URL", common.ErrInvalidConfig, c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: api.requests_per_second cannot be negative", common.ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: api.cache_ttl cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}
