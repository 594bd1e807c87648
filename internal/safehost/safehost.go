// Package safehost validates scan targets before any fetch happens. A target
// is accepted only when its hostname resolves to public address space, which
// keeps the scanner from being driven as a probe against internal networks.
package safehost

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/conformeo/sitescan/internal/logging"
	"github.com/conformeo/sitescan/internal/utils"
)

var (
	ErrUnsupportedScheme = errors.New("safehost: only http and https schemes are allowed")
	ErrUnresolvableHost  = errors.New("safehost: hostname could not be resolved")
	ErrBlockedHost       = errors.New("safehost: hostname resolves to a blocked address range")
)

// Resolver returns the A/AAAA addresses for a hostname. It is an interface so
// tests can inject static answers and the production wiring can use DoH.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]net.IP, error)
}

// Config controls validation policy.
type Config struct {
	// AllowPrivate disables the blocked-range classification. Only meant
	// for scanning fixtures on loopback during development and tests.
	AllowPrivate bool
}

// Validator checks that a parsed URL is a safe scan target.
type Validator struct {
	cfg      Config
	resolver Resolver
	logger   logging.Logger
}

// NewValidator creates a Validator using the given resolver.
func NewValidator(cfg Config, resolver Resolver, logger logging.Logger) *Validator {
	return &Validator{cfg: cfg, resolver: resolver, logger: logger}
}

// Validate accepts or rejects u as a scan target. On success it returns the
// resolved addresses. Exactly one resolution call is made; there are no
// retries, and DNS may of course change after validation.
func (v *Validator) Validate(ctx context.Context, u *url.URL) ([]net.IP, error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host, err := utils.NormalizeHost(u.Hostname())
	if err != nil || host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvableHost, u.Hostname())
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		// Literal address, no DNS round trip needed.
		ips = []net.IP{ip}
	} else {
		ips, err = v.resolver.LookupHost(ctx, host)
		if err != nil {
			if v.logger != nil {
				v.logger.Warn("host resolution failed",
					logging.Field{Key: "host", Value: host},
					logging.Field{Key: "error", Value: err.Error()})
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrUnresolvableHost, host, err)
		}
	}

	// An answer set with zero usable records is treated like a blocked
	// target: we have nothing public to connect to.
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %s resolved to no addresses", ErrBlockedHost, host)
	}

	if !v.cfg.AllowPrivate {
		// Classify every resolved address; an attacker can hide one
		// private record among public ones.
		for _, ip := range ips {
			if blockedIP(ip) {
				if v.logger != nil {
					v.logger.Warn("blocked scan target",
						logging.Field{Key: "host", Value: host},
						logging.Field{Key: "ip", Value: ip.String()})
				}
				return nil, fmt.Errorf("%w: %s -> %s", ErrBlockedHost, host, ip)
			}
		}
	}

	return ips, nil
}

// blockedIP reports whether connecting to ip would reach private or reserved
// address space: loopback (127.0.0.0/8, ::1), RFC1918 and fc00::/7,
// link-local (169.254.0.0/16, fe80::/10) and the unspecified address.
func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
