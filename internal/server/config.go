package server

import (
	"github.com/conformeo/sitescan/internal/checks"
	"github.com/conformeo/sitescan/internal/fetch"
	"github.com/conformeo/sitescan/internal/govern"
	"github.com/conformeo/sitescan/internal/logging"
	"github.com/conformeo/sitescan/internal/safehost"
)

// Config aggregates the runtime configuration for the API server and the
// scan pipeline it owns.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// DoHEndpoint is the DNS-over-HTTPS resolver used for target
	// validation.
	DoHEndpoint string

	Safehost safehost.Config
	Fetch    fetch.Config
	Checks   checks.Config
	Govern   govern.Config

	// Logger defaults to a JSON stdout logger when nil.
	Logger logging.Logger

	// Resolver overrides the DoH resolver when non-nil. Tests inject
	// static answers here.
	Resolver safehost.Resolver
}

// DefaultConfig returns a Config populated with production defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":8080",
		DoHEndpoint: "https://dns.google/resolve",
		Fetch:       fetch.DefaultConfig(),
		Checks:      checks.DefaultConfig(),
		Govern:      govern.DefaultConfig(),
	}
}
