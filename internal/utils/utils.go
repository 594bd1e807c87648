// Package utils contains URL normalization helpers shared by the scan
// pipeline and the governor's cache keying.
package utils

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("url has no host")
)

// NormalizeHost lowercases a hostname and converts internationalized names
// to their punycode (ASCII) form so DNS lookups and cache keys agree.
func NormalizeHost(host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		// Not every legal hostname survives the strict Lookup profile
		// (e.g. underscores); fall back to the lowercased input.
		return host, nil
	}
	return ascii, nil
}

// CanonicalTarget returns a deterministic scheme://host/path key for a raw
// target URL. Query, fragment, userinfo and default ports are dropped, the
// host is normalized and a trailing slash is trimmed (except root), so
// "HTTP://Example.com:80/a/?x=1" and "http://example.com/a" key identically.
func CanonicalTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)

	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return "", err
	}
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	return u.String(), nil
}
