// Package checks extracts the four compliance signals from a fetched
// document: transport security, cookie-consent banner, privacy policy and
// privacy contact channel. Every detector is a total function over arbitrary
// text; none mutates shared state or depends on another detector's result.
package checks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/conformeo/sitescan/internal/fetch"
	"github.com/conformeo/sitescan/internal/logging"
)

// ID names one compliance signal. The four IDs below are the complete,
// ordered set; the order is significant for display.
type ID string

const (
	CheckHTTPS          ID = "https"
	CheckCookieBanner   ID = "cookie-banner"
	CheckPrivacyPolicy  ID = "privacy-policy"
	CheckPrivacyContact ID = "privacy-contact"
)

// Result is one named boolean signal with display text.
type Result struct {
	ID     ID     `json:"id"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
	Caveat string `json:"caveat,omitempty"`
}

// Prober issues the HEAD requests of the privacy-policy path probe.
// Implemented by *fetch.Fetcher.
type Prober interface {
	Head(ctx context.Context, target string, timeout time.Duration) (int, error)
}

// Config controls the path-probe phase.
type Config struct {
	// ProbeTimeout bounds each individual HEAD attempt.
	ProbeTimeout time.Duration
}

// DefaultConfig returns the production probe settings.
func DefaultConfig() Config {
	return Config{ProbeTimeout: 5 * time.Second}
}

// Runner evaluates all four checks against a fetched document.
type Runner struct {
	cfg    Config
	prober Prober
	logger logging.Logger
}

// NewRunner creates a Runner using prober for the privacy-policy path probe.
func NewRunner(cfg Config, prober Prober, logger logging.Logger) *Runner {
	return &Runner{cfg: cfg, prober: prober, logger: logger}
}

// page is the pre-digested view of a document that the detectors share.
type page struct {
	// text is the lowercased visible text plus anchor hrefs.
	text string
	// host is the final hostname with a leading "www." stripped.
	host string
}

// Run evaluates the four checks and returns them in display order. The
// detectors are independent and read-only over the document, so they run
// concurrently.
func (r *Runner) Run(ctx context.Context, doc *fetch.Document) []Result {
	p := digest(doc)

	results := make([]Result, 4)
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		results[0] = httpsCheck(doc)
	}()
	go func() {
		defer wg.Done()
		results[1] = cookieBannerCheck(p)
	}()
	go func() {
		defer wg.Done()
		results[2] = r.privacyPolicyCheck(ctx, p, doc)
	}()
	go func() {
		defer wg.Done()
		results[3] = privacyContactCheck(p)
	}()
	wg.Wait()

	if r.logger != nil {
		passed := 0
		for _, res := range results {
			if res.Passed {
				passed++
			}
		}
		r.logger.Info("checks evaluated",
			logging.Field{Key: "url", Value: doc.FinalURL.String()},
			logging.Field{Key: "passed", Value: passed})
	}
	return results
}

// digest parses the document once and extracts the text every detector
// matches against. goquery tolerates arbitrarily broken markup; if parsing
// fails anyway the raw body is used as-is.
func digest(doc *fetch.Document) page {
	host := strings.TrimPrefix(strings.ToLower(doc.FinalURL.Hostname()), "www.")

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return page{text: strings.ToLower(string(doc.Body)), host: host}
	}

	var sb strings.Builder
	sb.WriteString(gq.Text())
	gq.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			sb.WriteByte(' ')
			sb.WriteString(href)
		}
	})
	return page{text: strings.ToLower(sb.String()), host: host}
}

func httpsCheck(doc *fetch.Document) Result {
	if doc.FinalURL.Scheme == "https" {
		return Result{
			ID:     CheckHTTPS,
			Passed: true,
			Detail: "La connexion au site est chiffrée (HTTPS).",
		}
	}
	return Result{
		ID:     CheckHTTPS,
		Detail: "Le site est servi en HTTP non chiffré.",
	}
}

func cookieBannerCheck(p page) Result {
	for _, bp := range bannerPatterns {
		if bp.re.MatchString(p.text) {
			return Result{
				ID:     CheckCookieBanner,
				Passed: true,
				Detail: "Des indices d'une bannière de consentement aux témoins (cookies) ont été détectés.",
				Caveat: fmt.Sprintf("Détection textuelle (motif « %s ») ; la bannière elle-même n'a pas été exécutée.", bp.Concept),
			}
		}
	}
	return Result{
		ID:     CheckCookieBanner,
		Detail: "Aucune bannière de consentement aux témoins (cookies) n'a été détectée.",
	}
}

func (r *Runner) privacyPolicyCheck(ctx context.Context, p page, doc *fetch.Document) Result {
	// Phase A: phrase match over the page text and anchors.
	for _, phrase := range policyPhrases {
		if strings.Contains(p.text, phrase) {
			return Result{
				ID:     CheckPrivacyPolicy,
				Passed: true,
				Detail: "Une politique de confidentialité a été détectée sur la page.",
			}
		}
	}

	// Phase B: probe well-known paths.
	if path, ok := r.probePolicyPaths(ctx, doc); ok {
		return Result{
			ID:     CheckPrivacyPolicy,
			Passed: true,
			Detail: "Une politique de confidentialité a été détectée.",
			Caveat: fmt.Sprintf("Trouvée via le chemin %s.", path),
		}
	}

	return Result{
		ID:     CheckPrivacyPolicy,
		Detail: "Aucune politique de confidentialité n'a été détectée.",
	}
}

// probePolicyPaths tries each candidate path in order with a HEAD request.
// Any per-path error or timeout counts as absence at that path; exhausting
// the whole list without a success is the explicit negative outcome.
func (r *Runner) probePolicyPaths(ctx context.Context, doc *fetch.Document) (string, bool) {
	if r.prober == nil {
		return "", false
	}
	base := doc.FinalURL.Scheme + "://" + doc.FinalURL.Host
	for _, path := range policyPaths {
		if ctx.Err() != nil {
			return "", false
		}
		status, err := r.prober.Head(ctx, base+path, r.cfg.ProbeTimeout)
		if err != nil {
			if r.logger != nil {
				r.logger.Debug("policy path probe failed",
					logging.Field{Key: "path", Value: path},
					logging.Field{Key: "error", Value: err.Error()})
			}
			continue
		}
		if status >= 200 && status < 300 {
			return path, true
		}
	}
	return "", false
}

func privacyContactCheck(p page) Result {
	if p.host != "" {
		for _, local := range contactLocalParts {
			candidate := local + "@" + p.host
			if strings.Contains(p.text, candidate) || strings.Contains(p.text, local+"@") {
				return Result{
					ID:     CheckPrivacyContact,
					Passed: true,
					Detail: "Un canal de contact pour les questions de confidentialité a été détecté.",
					Caveat: fmt.Sprintf("Adresse repérée : %s.", candidate),
				}
			}
		}
	}
	return Result{
		ID:     CheckPrivacyContact,
		Detail: "Aucune adresse de contact dédiée à la confidentialité n'a été détectée.",
	}
}

// DetectTrackers reports which known tracker hosts appear anywhere in the
// raw markup. Informational only; it does not influence the rating.
func DetectTrackers(body []byte) []string {
	text := strings.ToLower(string(body))
	var found []string
	for _, domain := range trackerDomains {
		if strings.Contains(text, domain) {
			found = append(found, domain)
		}
	}
	return found
}

// DetectSecurityHeaders reports which of the notable security headers were
// present on the final response.
func DetectSecurityHeaders(h http.Header) []string {
	var present []string
	for _, name := range securityHeaderNames {
		if h.Get(name) != "" {
			present = append(present, strings.ToLower(name))
		}
	}
	return present
}
