package safehost

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/conformeo/sitescan/internal/logging"
)

// DNS wire types we care about in DoH answers.
const (
	dnsTypeA    = 1
	dnsTypeAAAA = 28
)

// DoHResolver resolves hostnames through a DNS-over-HTTPS endpoint speaking
// the JSON API shape used by dns.google and cloudflare-dns.com.
type DoHResolver struct {
	endpoint string
	client   *http.Client
	logger   logging.Logger
}

// NewDoHResolver creates a resolver against endpoint (e.g.
// "https://dns.google/resolve"). If httpClient is nil a default client with a
// short timeout is used.
func NewDoHResolver(endpoint string, httpClient *http.Client, logger logging.Logger) *DoHResolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &DoHResolver{
		endpoint: endpoint,
		client:   httpClient,
		logger:   logger,
	}
}

type dohAnswer struct {
	Type int    `json:"type"`
	Data string `json:"data"`
}

type dohResponse struct {
	Status int         `json:"Status"`
	Answer []dohAnswer `json:"Answer"`
}

// LookupHost queries A then AAAA records for host and returns every address
// found. A transport or decode failure on either query fails the lookup as a
// whole; CNAME and other non-address records in the answer are skipped.
func (r *DoHResolver) LookupHost(ctx context.Context, host string) ([]net.IP, error) {
	var ips []net.IP
	for _, qtype := range []string{"A", "AAAA"} {
		answers, err := r.query(ctx, host, qtype)
		if err != nil {
			return nil, err
		}
		for _, a := range answers {
			if a.Type != dnsTypeA && a.Type != dnsTypeAAAA {
				continue
			}
			if ip := net.ParseIP(a.Data); ip != nil {
				ips = append(ips, ip)
			}
		}
	}
	return ips, nil
}

func (r *DoHResolver) query(ctx context.Context, host, qtype string) ([]dohAnswer, error) {
	q := url.Values{}
	q.Set("name", host)
	q.Set("type", qtype)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create doh request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doh query %s/%s: %w", host, qtype, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doh query %s/%s: unexpected status %d", host, qtype, resp.StatusCode)
	}

	var body dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode doh response: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("doh lookup",
			logging.Field{Key: "host", Value: host},
			logging.Field{Key: "type", Value: qtype},
			logging.Field{Key: "answers", Value: len(body.Answer)})
	}
	return body.Answer, nil
}
