package scan

import (
	"time"

	"github.com/conformeo/sitescan/internal/checks"
	"github.com/conformeo/sitescan/internal/rating"
)

// Response is the externally visible result of one scan. It is constructed
// once per successful scan, cached by the governor, and never mutated.
type Response struct {
	// ScanID uniquely identifies this scan execution.
	ScanID string `json:"scan_id"`

	// URL is the target actually evaluated, after redirects.
	URL string `json:"url"`

	// Rating is the qualitative outcome derived from the checks.
	Rating rating.Rating `json:"rating"`

	// Checks lists the four signals in display order.
	Checks []checks.Result `json:"checks"`

	// Passed is how many of the checks passed.
	Passed int `json:"passed"`

	// Total is the number of checks evaluated (always 4).
	Total int `json:"total"`

	// NotTested lists the deeper criteria the scan does not evaluate.
	NotTested []string `json:"not_tested"`

	// Recommendations are remediation hints for the failed checks.
	Recommendations []string `json:"recommendations"`

	// Details carries informational findings that do not affect the rating.
	Details Details `json:"details"`

	// ScannedAt is when the scan ran.
	ScannedAt time.Time `json:"scanned_at"`

	// ScanSeconds is the wall-clock duration of the scan, rounded.
	ScanSeconds int `json:"scan_seconds"`
}

// Details holds informational findings surfaced alongside the rating.
type Details struct {
	// TrackersFound lists known third-party tracker hosts referenced in
	// the page markup.
	TrackersFound []string `json:"trackers_found"`

	// SecurityHeaders lists the notable security headers present on the
	// final response.
	SecurityHeaders []string `json:"security_headers"`
}
