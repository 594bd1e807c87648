package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/conformeo/sitescan/internal/fetch"
	"github.com/conformeo/sitescan/internal/testutil"
)

func newFetcher(cfg fetch.Config) *fetch.Fetcher {
	return fetch.New(cfg, nil, &testutil.DummyLogger{})
}

func htmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}
}

func TestFetch_ReturnsDocument(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(htmlHandler("<html><body>bonjour</body></html>"))
	defer srv.Close()

	cfg := fetch.DefaultConfig()
	doc, err := newFetcher(cfg).Fetch(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(doc.Body), "bonjour") {
		t.Errorf("body not returned: %q", doc.Body)
	}
	if doc.FinalURL.Path != "/page" {
		t.Errorf("final URL = %s", doc.FinalURL)
	}
	if doc.ContentType != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", doc.ContentType)
	}
}

func TestFetch_RecordsFinalURLAfterRedirect(t *testing.T) {
	t.Parallel()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, srv.URL+"/new", http.StatusMovedPermanently)
			return
		}
		htmlHandler("<html>moved here</html>")(w, r)
	}))
	defer srv.Close()

	doc, err := newFetcher(fetch.DefaultConfig()).Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.FinalURL.Path != "/new" {
		t.Errorf("final URL after redirect = %s, want /new", doc.FinalURL)
	}
}

func TestFetch_RejectsNonHTML(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	_, err := newFetcher(fetch.DefaultConfig()).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, fetch.ErrUnsupportedContentType) {
		t.Errorf("got %v, want ErrUnsupportedContentType", err)
	}
}

func TestFetch_AbortsPastByteCap(t *testing.T) {
	t.Parallel()
	// Streams well past the cap; the fetch must abort, not buffer it all.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		chunk := strings.Repeat("x", 64*1024)
		for i := 0; i < 200; i++ { // ~12.8 MB if fully read
			if _, err := w.Write([]byte(chunk)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	cfg := fetch.DefaultConfig()
	cfg.MaxBodyBytes = 1_000_000
	_, err := newFetcher(cfg).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, fetch.ErrTooLarge) {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}
}

func TestFetch_BodyAtExactlyCapSucceeds(t *testing.T) {
	t.Parallel()
	cfg := fetch.DefaultConfig()
	cfg.MaxBodyBytes = 512
	srv := httptest.NewServer(htmlHandler(strings.Repeat("a", 512)))
	defer srv.Close()

	doc, err := newFetcher(cfg).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(doc.Body) != 512 {
		t.Errorf("body length = %d, want 512", len(doc.Body))
	}
}

func TestFetch_TimesOut(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := fetch.DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond
	start := time.Now()
	_, err := newFetcher(cfg).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, fetch.ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout did not actively cancel the transfer")
	}
}

func TestFetch_NetworkError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(htmlHandler("x"))
	srv.Close() // connection refused from here on

	_, err := newFetcher(fetch.DefaultConfig()).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, fetch.ErrNetwork) {
		t.Errorf("got %v, want ErrNetwork", err)
	}
}

func TestFetch_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "confidentialité" with é as latin-1 0xE9
		w.Write([]byte("<html>confidentialit\xe9</html>"))
	}))
	defer srv.Close()

	doc, err := newFetcher(fetch.DefaultConfig()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(doc.Body), "confidentialité") {
		t.Errorf("latin-1 body was not decoded to UTF-8: %q", doc.Body)
	}
}

func TestHead_ReturnsStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/privacy" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newFetcher(fetch.DefaultConfig())
	status, err := f.Head(context.Background(), srv.URL+"/privacy", time.Second)
	if err != nil || status != http.StatusOK {
		t.Fatalf("Head(/privacy) = %d, %v", status, err)
	}
	status, err = f.Head(context.Background(), srv.URL+"/nope", time.Second)
	if err != nil || status != http.StatusNotFound {
		t.Fatalf("Head(/nope) = %d, %v", status, err)
	}
}
