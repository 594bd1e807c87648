// Package govern fronts the scan pipeline with the two policies that bound
// its cost: per-client rate limiting and per-target result caching. The
// pipeline's fetch is the system's only outbound, attacker-influenceable
// I/O, so this is the one place with explicit backpressure.
package govern

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/conformeo/sitescan/internal/logging"
	"github.com/conformeo/sitescan/internal/scan"
	"github.com/conformeo/sitescan/internal/utils"
)

// ErrRateLimited is returned when a client exceeds its request quota.
var ErrRateLimited = errors.New("govern: rate limit exceeded")

// Scanner runs the full pipeline for one target. Implemented by
// *scan.Pipeline.
type Scanner interface {
	Scan(ctx context.Context, rawURL string) (*scan.Response, error)
}

// Config holds the governor's policy knobs.
type Config struct {
	// Window and Quota define the fixed-window rate limit per client key.
	Window time.Duration
	Quota  int

	// CacheTTL is how long a scan response is served from cache.
	CacheTTL time.Duration

	// SweepInterval is how often stale limiter and cache entries are
	// discarded to bound memory.
	SweepInterval time.Duration
}

// DefaultConfig returns the production governor policy.
func DefaultConfig() Config {
	return Config{
		Window:        60 * time.Second,
		Quota:         10,
		CacheTTL:      5 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// limitEntry is one client's fixed-window counter.
type limitEntry struct {
	count       int
	windowStart time.Time
}

// cacheEntry is one stored scan response.
type cacheEntry struct {
	resp     *scan.Response
	storedAt time.Time
}

// Governor owns the rate-limit map and the result cache — the only mutable
// shared state in the system. Construct one per process (or per test).
type Governor struct {
	cfg      Config
	pipeline Scanner
	logger   logging.Logger

	mu     sync.Mutex
	limits map[string]*limitEntry

	cmu   sync.Mutex
	cache map[string]cacheEntry

	now  func() time.Time
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Governor and starts its two periodic sweepers. Call Close
// to stop them.
func New(cfg Config, pipeline Scanner, logger logging.Logger) *Governor {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	g := &Governor{
		cfg:      cfg,
		pipeline: pipeline,
		logger:   logger,
		limits:   make(map[string]*limitEntry),
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
		done:     make(chan struct{}),
	}

	g.wg.Add(2)
	go g.sweepLoop(g.sweepLimits)
	go g.sweepLoop(g.sweepCache)
	return g
}

// Close stops the sweepers.
func (g *Governor) Close() {
	close(g.done)
	g.wg.Wait()
}

// Handle runs one scan request through the governor: rate check, cache
// check, then the full pipeline. Cached hits and rate rejections cause zero
// network side effects.
func (g *Governor) Handle(ctx context.Context, clientKey, rawURL string) (*scan.Response, error) {
	if !g.allow(clientKey) {
		if g.logger != nil {
			g.logger.Warn("rate limited", logging.Field{Key: "client", Value: clientKey})
		}
		return nil, ErrRateLimited
	}

	cacheKey, keyErr := utils.CanonicalTarget(rawURL)
	if keyErr == nil {
		if resp, ok := g.lookup(cacheKey); ok {
			if g.logger != nil {
				g.logger.Debug("cache hit", logging.Field{Key: "target", Value: cacheKey})
			}
			return resp, nil
		}
	}
	// An unkeyable URL still goes through the pipeline, which rejects it
	// with a proper typed error.

	resp, err := g.pipeline.Scan(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if keyErr == nil {
		g.store(cacheKey, resp)
	}
	return resp, nil
}

// allow applies the fixed-window quota for key. The first request of a new
// window resets the counter; the Quota+1-th request inside a window is
// rejected.
func (g *Governor) allow(key string) bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.limits[key]
	if !ok || now.Sub(e.windowStart) >= g.cfg.Window {
		g.limits[key] = &limitEntry{count: 1, windowStart: now}
		return true
	}
	if e.count >= g.cfg.Quota {
		return false
	}
	e.count++
	return true
}

func (g *Governor) lookup(key string) (*scan.Response, bool) {
	now := g.now()

	g.cmu.Lock()
	defer g.cmu.Unlock()

	e, ok := g.cache[key]
	if !ok || now.Sub(e.storedAt) >= g.cfg.CacheTTL {
		return nil, false
	}
	return e.resp, true
}

func (g *Governor) store(key string, resp *scan.Response) {
	g.cmu.Lock()
	defer g.cmu.Unlock()
	g.cache[key] = cacheEntry{resp: resp, storedAt: g.now()}
}

func (g *Governor) sweepLoop(sweep func()) {
	defer g.wg.Done()
	t := time.NewTicker(g.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-g.done:
			return
		case <-t.C:
			sweep()
		}
	}
}

func (g *Governor) sweepLimits() {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, e := range g.limits {
		if now.Sub(e.windowStart) >= g.cfg.Window {
			delete(g.limits, key)
		}
	}
}

func (g *Governor) sweepCache() {
	now := g.now()
	g.cmu.Lock()
	defer g.cmu.Unlock()
	for key, e := range g.cache {
		if now.Sub(e.storedAt) >= g.cfg.CacheTTL {
			delete(g.cache, key)
		}
	}
}

// ClientKey derives the rate-limit key for a request: first entry of
// X-Forwarded-For, else X-Real-IP, else a shared "unknown" bucket. Known
// limitation: clients behind a proxy that strips both headers share one
// quota.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	return "unknown"
}
