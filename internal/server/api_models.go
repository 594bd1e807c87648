package server

// AuditRequest is the body of POST /api/audit.
type AuditRequest struct {
	// URL is the absolute http(s) URL of the site to analyze.
	URL string `json:"url" example:"https://exemple.ca"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
