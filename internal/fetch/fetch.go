// Package fetch retrieves a scan target's page under a hard time budget and
// a hard byte budget, rejecting non-HTML responses early.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/conformeo/sitescan/internal/logging"
)

var (
	ErrTimeout                = errors.New("fetch: target did not respond within the time budget")
	ErrTooLarge               = errors.New("fetch: response body exceeds the byte budget")
	ErrUnsupportedContentType = errors.New("fetch: target did not serve an HTML document")
	ErrNetwork                = errors.New("fetch: network error")
)

// Document is the outcome of retrieving a scan target.
type Document struct {
	// FinalURL is the URL reached after following redirects. The https
	// signal is judged on this, not the originally requested URL.
	FinalURL *url.URL

	// ContentType is the declared media type of the response.
	ContentType string

	// Header holds the final response headers.
	Header http.Header

	// Body is the decoded document text, never longer than the byte cap.
	Body []byte

	FetchedAt time.Time
}

// Fetcher performs bounded GET and HEAD requests.
type Fetcher struct {
	cfg    Config
	client *http.Client
	logger logging.Logger
}

// New creates a Fetcher. If httpClient is nil a default client is
// constructed; the overall timeout is always enforced through the request
// context so a hanging target is actively cancelled, not merely abandoned.
func New(cfg Config, httpClient *http.Client, logger logging.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Fetcher{cfg: cfg, client: httpClient, logger: logger}
}

// Fetch GETs target and returns the capped, decoded document.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(target, err)
	}
	defer resp.Body.Close()

	mediaType := resp.Header.Get("Content-Type")
	if !isHTML(mediaType) {
		if f.logger != nil {
			f.logger.Warn("non-html response",
				logging.Field{Key: "url", Value: target},
				logging.Field{Key: "content_type", Value: mediaType})
		}
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedContentType, mediaType)
	}

	raw, err := f.readCapped(resp.Body)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, f.classify(target, err)
	}

	body, err := decodeBody(raw, mediaType)
	if err != nil {
		// Undecodable charset declarations fall back to the raw bytes;
		// the extractors tolerate arbitrary text.
		body = raw
	}

	doc := &Document{
		FinalURL:    resp.Request.URL,
		ContentType: mediaType,
		Header:      resp.Header,
		Body:        body,
		FetchedAt:   time.Now(),
	}

	if f.logger != nil {
		f.logger.Debug("fetched document",
			logging.Field{Key: "url", Value: doc.FinalURL.String()},
			logging.Field{Key: "bytes", Value: len(doc.Body)})
	}
	return doc, nil
}

// Head issues a HEAD request against target with its own short timeout and
// returns the response status code. Used by the privacy-policy path probe.
func (f *Fetcher) Head(ctx context.Context, target string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, f.classify(target, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// readCapped streams body into memory, counting bytes as they arrive. It
// never buffers more than the cap: once a single byte past the cap shows up
// the transfer is aborted with ErrTooLarge.
func (f *Fetcher) readCapped(body io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, body, f.cfg.MaxBodyBytes); err == io.EOF {
		return buf.Bytes(), nil
	} else if err != nil {
		return nil, err
	}

	// Probe a single extra byte without retaining it.
	var probe [1]byte
	n, err := body.Read(probe[:])
	if n > 0 {
		return nil, ErrTooLarge
	}
	if err == io.EOF {
		return buf.Bytes(), nil
	}
	if err != nil {
		return nil, err
	}
	return nil, ErrTooLarge
}

func (f *Fetcher) classify(target string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if f.logger != nil {
			f.logger.Warn("fetch timed out", logging.Field{Key: "url", Value: target})
		}
		return fmt.Errorf("%w: %s", ErrTimeout, target)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch strings.ToLower(mediaType) {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// decodeBody converts raw bytes to UTF-8 according to the declared charset
// so the extractors match against decoded text. The cap applies to the
// transferred bytes, before decoding.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
