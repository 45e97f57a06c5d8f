package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Veraticus/claimdesk/internal/api"
	"github.com/spf13/viper"
)

// DefaultDatabasePath is where the snapshot cache lives unless database.path says otherwise.
const DefaultDatabasePath = "~/.local/share/claimdesk/claimdesk.db"

// LoadAPIConfig loads backend client configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or CLAIMDESK_ env vars)
// 2. Direct environment variables (CLAIMDESK_API_*)
// 3. Default values
func LoadAPIConfig() (*api.Config, error) {
	config := api.DefaultConfig()

	if v := viper.GetString("api.base_url"); v != "" {
		config.BaseURL = v
	}
	if v := viper.GetString("api.token"); v != "" {
		config.Token = v
	}
	if viper.IsSet("api.timeout") {
		config.Timeout = viper.GetDuration("api.timeout")
	}
	if viper.IsSet("api.requests_per_second") {
		config.RequestsPerSecond = viper.GetFloat64("api.requests_per_second")
	}
	if viper.IsSet("api.cache_ttl") {
		config.CacheTTL = viper.GetDuration("api.cache_ttl")
	}

	if config.BaseURL == "" {
		config.BaseURL = os.Getenv("CLAIMDESK_API_BASE_URL")
	}
	if config.Token == "" {
		config.Token = os.Getenv("CLAIMDESK_API_TOKEN")
	}
	if !viper.IsSet("api.timeout") {
		if d, ok := envDuration("CLAIMDESK_API_TIMEOUT"); ok {
			config.Timeout = d
		}
	}
	if !viper.IsSet("api.requests_per_second") {
		if v := os.Getenv("CLAIMDESK_API_REQUESTS_PER_SECOND"); v != "" {
			if rps, err := strconv.ParseFloat(v, 64); err == nil {
				config.RequestsPerSecond = rps
			}
		}
	}
	if !viper.IsSet("api.cache_ttl") {
		if d, ok := envDuration("CLAIMDESK_API_CACHE_TTL"); ok {
			config.CacheTTL = d
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DatabasePath returns the expanded snapshot cache location.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
