// Package constants provides a centralized location for timing values and
// magic numbers used throughout focus.
package constants

import "time"

// Indicator timing
const (
	// IndicatorStartupDelay is the grace period between showing the
	// indicator and the first refresh.
	IndicatorStartupDelay = 5 * time.Second

	// ConfigReloadDebounce is how long config file events must settle
	// before a reload.
	ConfigReloadDebounce = 250 * time.Millisecond
)

// TUI display constants
const (
	// HeaderLines is the number of lines used for the quick focus header.
	HeaderLines = 3

	// FooterLines is the number of lines used for the quick focus footer.
	FooterLines = 2

	// StatusMessageTTL is how long transient status messages stay visible.
	StatusMessageTTL = 2 * time.Second
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Cache TTL constants
const (
	// PRListCacheTTL is the TTL for cached provider lists. Forced refreshes
	// bypass it.
	PRListCacheTTL = 5 * time.Minute
)

// Provider timeouts
const (
	// GitLabCommandTimeout bounds a single glab invocation.
	GitLabCommandTimeout = 30 * time.Second
)
