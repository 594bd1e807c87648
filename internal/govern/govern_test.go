package govern

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/conformeo/sitescan/internal/scan"
	"github.com/conformeo/sitescan/internal/testutil"
)

// countingScanner returns a fresh canned response per call and counts calls.
type countingScanner struct {
	calls atomic.Int64
	err   error
}

func (s *countingScanner) Scan(_ context.Context, rawURL string) (*scan.Response, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &scan.Response{ScanID: "scan", URL: rawURL, Passed: 1, Total: 4}, nil
}

// fakeClock is a controllable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGovernor(t *testing.T, cfg Config, s Scanner) (*Governor, *fakeClock) {
	t.Helper()
	g := New(cfg, s, &testutil.DummyLogger{})
	t.Cleanup(g.Close)
	clock := &fakeClock{t: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	g.now = clock.now
	return g, clock
}

func TestHandle_RateLimitBoundary(t *testing.T) {
	t.Parallel()
	s := &countingScanner{}
	g, clock := newTestGovernor(t, DefaultConfig(), s)

	// Distinct URLs defeat the cache so every allowed request hits the
	// pipeline.
	for i := 0; i < 10; i++ {
		if _, err := g.Handle(context.Background(), "1.2.3.4", urlN(i)); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	// 11th request inside the window is rejected with zero pipeline work.
	before := s.calls.Load()
	_, err := g.Handle(context.Background(), "1.2.3.4", urlN(10))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("11th request: got %v, want ErrRateLimited", err)
	}
	if s.calls.Load() != before {
		t.Error("rejected request must not touch the pipeline")
	}

	// A different client is unaffected.
	if _, err := g.Handle(context.Background(), "5.6.7.8", urlN(11)); err != nil {
		t.Fatalf("other client: %v", err)
	}

	// First request of a fresh window succeeds again.
	clock.advance(61 * time.Second)
	if _, err := g.Handle(context.Background(), "1.2.3.4", urlN(12)); err != nil {
		t.Fatalf("new window: %v", err)
	}
}

func urlN(i int) string {
	return "https://example.com/page" + string(rune('a'+i))
}

func TestHandle_CacheRoundTrip(t *testing.T) {
	t.Parallel()
	s := &countingScanner{}
	g, clock := newTestGovernor(t, DefaultConfig(), s)

	first, err := g.Handle(context.Background(), "1.2.3.4", "https://example.com/page")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if s.calls.Load() != 1 {
		t.Fatalf("expected one pipeline run, got %d", s.calls.Load())
	}

	// Equivalent spellings of the target hit the same cache entry.
	second, err := g.Handle(context.Background(), "1.2.3.4", "HTTPS://Example.com:443/page/")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if s.calls.Load() != 1 {
		t.Error("cache hit must not trigger a new fetch")
	}
	if second != first {
		t.Error("cache hit should return the stored response")
	}

	// After the TTL the pipeline runs again.
	clock.advance(5*time.Minute + time.Second)
	if _, err := g.Handle(context.Background(), "1.2.3.4", "https://example.com/page"); err != nil {
		t.Fatalf("post-TTL: %v", err)
	}
	if s.calls.Load() != 2 {
		t.Errorf("expected refetch after TTL, calls = %d", s.calls.Load())
	}
}

func TestHandle_FailedScanIsNotCached(t *testing.T) {
	t.Parallel()
	s := &countingScanner{err: errors.New("fetch: too large")}
	g, _ := newTestGovernor(t, DefaultConfig(), s)

	if _, err := g.Handle(context.Background(), "1.2.3.4", "https://example.com/"); err == nil {
		t.Fatal("expected scan failure")
	}
	s.err = nil
	if _, err := g.Handle(context.Background(), "1.2.3.4", "https://example.com/"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.calls.Load() != 2 {
		t.Errorf("failure must not leave a cache entry, calls = %d", s.calls.Load())
	}
}

func TestSweep_DropsStaleEntries(t *testing.T) {
	t.Parallel()
	s := &countingScanner{}
	g, clock := newTestGovernor(t, DefaultConfig(), s)

	if _, err := g.Handle(context.Background(), "1.2.3.4", "https://example.com/"); err != nil {
		t.Fatalf("handle: %v", err)
	}

	clock.advance(10 * time.Minute)
	g.sweepLimits()
	g.sweepCache()

	g.mu.Lock()
	nLimits := len(g.limits)
	g.mu.Unlock()
	g.cmu.Lock()
	nCache := len(g.cache)
	g.cmu.Unlock()
	if nLimits != 0 || nCache != 0 {
		t.Errorf("stale entries survived sweep: limits=%d cache=%d", nLimits, nCache)
	}
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/api/audit", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientKey(r); got != "203.0.113.9" {
		t.Errorf("XFF key = %q", got)
	}

	r = httptest.NewRequest("POST", "/api/audit", nil)
	r.Header.Set("X-Real-IP", "198.51.100.7")
	if got := ClientKey(r); got != "198.51.100.7" {
		t.Errorf("X-Real-IP key = %q", got)
	}

	r = httptest.NewRequest("POST", "/api/audit", nil)
	if got := ClientKey(r); got != "unknown" {
		t.Errorf("fallback key = %q", got)
	}
}
