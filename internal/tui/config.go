package tui

import (
	"time"

	"github.com/Veraticus/claimdesk/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	RequestTimeout time.Duration
	Width          int
	Height         int
	ShowSummary    bool
	MouseSupport   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:          themes.Default,
		RequestTimeout: 30 * time.Second,
		Width:          100,
		Height:         30,
		ShowSummary:    true,
		MouseSupport:   true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithSummary toggles the summary panel.
func WithSummary(show bool) Option {
	return func(c *Config) {
		c.ShowSummary = show
	}
}

// WithRequestTimeout bounds each refresh and claim action.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.RequestTimeout = timeout
		}
	}
}

// WithMouse toggles mouse support.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}
