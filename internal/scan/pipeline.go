// Package scan runs the full evaluation pipeline for one target:
// validate → fetch → extract → rate.
package scan

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/conformeo/sitescan/internal/checks"
	"github.com/conformeo/sitescan/internal/fetch"
	"github.com/conformeo/sitescan/internal/logging"
	"github.com/conformeo/sitescan/internal/rating"
)

// Validator accepts or rejects a parsed target URL. Implemented by
// *safehost.Validator.
type Validator interface {
	Validate(ctx context.Context, u *url.URL) ([]net.IP, error)
}

// Fetcher retrieves a target document. Implemented by *fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*fetch.Document, error)
}

// Pipeline wires the scan stages together. Each stage can short-circuit
// with a typed failure; there are no retries anywhere.
type Pipeline struct {
	validator Validator
	fetcher   Fetcher
	runner    *checks.Runner
	logger    logging.Logger
}

// NewPipeline creates a Pipeline from its stages.
func NewPipeline(validator Validator, fetcher Fetcher, runner *checks.Runner, logger logging.Logger) *Pipeline {
	return &Pipeline{
		validator: validator,
		fetcher:   fetcher,
		runner:    runner,
		logger:    logger,
	}
}

// Scan evaluates rawURL and returns the scan response. Errors from the
// validator and fetcher propagate typed so the caller can map them.
func (p *Pipeline) Scan(ctx context.Context, rawURL string) (*Response, error) {
	start := time.Now()

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse target: %w", err)
	}

	if _, err := p.validator.Validate(ctx, target); err != nil {
		return nil, err
	}

	doc, err := p.fetcher.Fetch(ctx, target.String())
	if err != nil {
		return nil, err
	}

	results := p.runner.Run(ctx, doc)
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	trackers := checks.DetectTrackers(doc.Body)

	resp := &Response{
		ScanID:          uuid.New().String(),
		URL:             doc.FinalURL.String(),
		Rating:          rating.Rate(passed),
		Checks:          results,
		Passed:          passed,
		Total:           len(results),
		NotTested:       rating.NotTestedCriteria,
		Recommendations: recommendations(results, trackers),
		Details: Details{
			TrackersFound:   trackers,
			SecurityHeaders: checks.DetectSecurityHeaders(doc.Header),
		},
		ScannedAt:   doc.FetchedAt,
		ScanSeconds: int(time.Since(start).Round(time.Second) / time.Second),
	}

	if p.logger != nil {
		p.logger.Info("scan completed",
			logging.Field{Key: "url", Value: resp.URL},
			logging.Field{Key: "tier", Value: string(resp.Rating.Tier)},
			logging.Field{Key: "passed", Value: resp.Passed})
	}
	return resp, nil
}

// recommendations derives remediation hints from the failed checks, capped
// at four entries.
func recommendations(results []checks.Result, trackers []string) []string {
	failed := make(map[checks.ID]bool, len(results))
	for _, r := range results {
		if !r.Passed {
			failed[r.ID] = true
		}
	}

	var recs []string
	if failed[checks.CheckPrivacyPolicy] {
		recs = append(recs, "Ajoutez une politique de confidentialité claire et accessible sur votre site.")
	}
	if failed[checks.CheckHTTPS] {
		recs = append(recs, "Activez HTTPS avec un certificat SSL valide pour sécuriser toutes les communications.")
	}
	if len(trackers) > 0 && failed[checks.CheckCookieBanner] {
		recs = append(recs, "Implémentez une bannière de consentement conforme à la Loi 25 pour vos témoins et traceurs.")
	}
	if failed[checks.CheckCookieBanner] {
		recs = append(recs, "Ajoutez un système de gestion du consentement aux témoins (cookies).")
	}
	if failed[checks.CheckPrivacyContact] {
		recs = append(recs, "Désignez un point de contact pour les questions de confidentialité, par exemple confidentialite@votredomaine.com.")
	}

	if len(recs) > 4 {
		recs = recs[:4]
	}
	return recs
}
