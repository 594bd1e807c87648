package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/conformeo/sitescan/docs" // swagger spec registration
	"github.com/conformeo/sitescan/internal/checks"
	"github.com/conformeo/sitescan/internal/fetch"
	"github.com/conformeo/sitescan/internal/govern"
	"github.com/conformeo/sitescan/internal/logging"
	"github.com/conformeo/sitescan/internal/safehost"
	"github.com/conformeo/sitescan/internal/scan"
)

// Server is the HTTP API surface for the compliance scanner.
type Server struct {
	cfg      Config
	governor *govern.Governor
	router   chi.Router
	logger   logging.Logger
}

// NewServer creates a Server owning its own scan pipeline and governor.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = safehost.NewDoHResolver(cfg.DoHEndpoint, nil, logger)
	}

	validator := safehost.NewValidator(cfg.Safehost, resolver, logger)
	fetcher := fetch.New(cfg.Fetch, nil, logger)
	runner := checks.NewRunner(cfg.Checks, fetcher, logger)
	pipeline := scan.NewPipeline(validator, fetcher, runner, logger)
	governor := govern.New(cfg.Govern, pipeline, logger)

	s := &Server{
		cfg:      cfg,
		governor: governor,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/audit", s.optionsHandler("POST"))

	r.Post("/api/audit", s.handleAudit)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})

	s.router.ServeHTTP(w, r)
}

// Close stops the governor's sweepers.
func (s *Server) Close() {
	if s.governor != nil {
		s.governor.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe. The write
// timeout leaves room for the worst-case scan (fetch budget plus every
// path probe timing out).
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// handleAudit runs the compliance scan for one target URL.
//
//	@Summary		Analyse de conformité d'un site web
//	@Description	Récupère la page cible et en extrait les signaux de conformité de base (HTTPS, bannière de témoins, politique de confidentialité, contact confidentialité).
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AuditRequest	true	"Site à analyser"
//	@Success		200		{object}	scan.Response
//	@Failure		400		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/audit [post]
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var body AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	target, err := url.Parse(strings.TrimSpace(body.URL))
	if err != nil || !target.IsAbs() || target.Host == "" {
		writeError(w, http.StatusBadRequest, "invalid URL provided")
		return
	}

	resp, err := s.governor.Handle(r.Context(), govern.ClientKey(r), target.String())
	switch {
	case errors.Is(err, govern.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "too many requests")
	case err != nil:
		// Log the real cause; callers only get a generic failure so the
		// scanner gives no feedback to someone probing its boundaries.
		s.logger.Warn("scan failed",
			logging.Field{Key: "url", Value: target.String()},
			logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to scan domain")
	default:
		s.logger.Info("scan served",
			logging.Field{Key: "url", Value: resp.URL},
			logging.Field{Key: "tier", Value: string(resp.Rating.Tier)})
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleHealthz reports liveness.
//
//	@Summary	Sonde de vivacité
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/healthz [get]
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
