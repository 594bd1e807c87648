package fetch

import "time"

// Config bounds a page fetch. The limits exist so that an attacker-supplied
// target can never hold the scanner's memory or connections hostage.
type Config struct {
	// Timeout is the overall budget for the GET, redirects included.
	Timeout time.Duration

	// MaxBodyBytes caps how much of the response body is ever buffered.
	// The transfer is aborted, not truncated, once the cap is exceeded.
	MaxBodyBytes int64

	// UserAgent identifies the scanner to site operators.
	UserAgent string
}

// DefaultConfig returns the production fetch limits.
func DefaultConfig() Config {
	return Config{
		Timeout:      25 * time.Second,
		MaxBodyBytes: 1_000_000,
		UserAgent:    "sitescan/1.0 (+https://conformeo.ca/scanner)",
	}
}
