// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/conformeo/sitescan/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── Resolver ──────────────────────────────────────────────────────────

// StaticResolver implements safehost.Resolver with canned answers.
// Hosts absent from the map fail with a lookup error.
type StaticResolver struct {
	Hosts map[string][]net.IP
}

func (r *StaticResolver) LookupHost(_ context.Context, host string) ([]net.IP, error) {
	ips, ok := r.Hosts[host]
	if !ok {
		return nil, errors.New("static resolver: no such host " + host)
	}
	return ips, nil
}

// IPs parses a list of address literals, panicking on bad input so tests
// fail loudly at setup time.
func IPs(addrs ...string) []net.IP {
	out := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip == nil {
			panic("testutil: bad IP literal " + a)
		}
		out = append(out, ip)
	}
	return out
}
