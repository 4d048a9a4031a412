// Package http serves the financeiro dashboard: the HTML page and its htmx
// partials, the transaction form endpoint and a small JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"financeiro/internal/analytics"
	"financeiro/internal/cache"
	"financeiro/internal/core"
	"financeiro/internal/log"
	appweb "financeiro/web"
)

// TransactionService is what the HTTP layer needs from the ledger service.
type TransactionService interface {
	Record(ctx context.Context, t core.Transaction) ([]core.Transaction, error)
	Dashboard(ctx context.Context) analytics.Summary
	Transactions(ctx context.Context) []core.Transaction
}

// Server serves the dashboard, the transaction form endpoint and a small
// JSON API over one ledger.
type Server struct {
	http.Server
	templates    *template.Template
	svc          TransactionService
	logger       *log.Logger
	events       *log.EventLogger
	headers      HeadersConfig
	writes       *writeLimiter
	metrics      *securityMetrics
	now          func() time.Time
	started      time.Time
	shutdownOnce sync.Once
}

// Option customises a Server.
type Option func(*Server)

// WithWriteLimit sets how many POSTs a client may send per minute.
func WithWriteLimit(perMinute int) Option {
	return func(s *Server) {
		s.writes = newWriteLimiter(perMinute)
	}
}

// WithHeaders replaces the default security headers.
func WithHeaders(cfg HeadersConfig) Option {
	return func(s *Server) { s.headers = cfg }
}

// WithClock overrides the clock used to default the transaction date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc TransactionService, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:     svc,
		logger:  logger,
		events:  log.NewEventLogger(logger),
		headers: DefaultHeadersConfig(),
		writes:  newWriteLimiter(defaultWritesPerMinute),
		metrics: &securityMetrics{},
		now:     time.Now,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(log.Middleware(s.logger, func(r *http.Request) string {
		return chimw.GetReqID(r.Context())
	}))
	r.Use(s.withRequestLogging)
	r.Use(chimw.Recoverer)
	r.Use(s.withSecurity)

	r.Get("/", s.handleIndex)
	r.Post("/transactions", s.handleCreateTransaction)
	r.Get("/ui/summary", s.handleSummaryPartial)
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleAPISummary)
		r.Get("/transactions", s.handleAPITransactions)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		})
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}
	return r
}

// withRequestLogging records one completion line per request.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.events.HTTPCompleted(r.Context(), r, status, time.Since(start), extractClientIP(r))
	})
}

// withSecurity adds security headers and rate limits POST requests.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		logger := log.FromContext(r.Context())

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		s.headers.apply(w, r)

		if r.Method == http.MethodPost {
			if ok, wait := s.writes.allow(clientIP, s.metrics); !ok {
				logger.WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server. Later calls return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// WriteLimits exposes the per-client POST counters so a cache.Janitor can
// drop idle clients.
func (s *Server) WriteLimits() cache.Cleaner {
	return s.writes
}

// Uptime reports how long the server has existed.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.started)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	newReply(http.StatusOK).json(map[string]string{
		"status": "ok",
		"uptime": s.Uptime().Round(time.Second).String(),
	}).write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		jsonError(http.StatusServiceUnavailable, "templates not loaded").write(w)
		return
	}
	newReply(http.StatusOK).json(map[string]any{
		"status":  "ready",
		"records": len(s.svc.Transactions(r.Context())),
	}).write(w)
}
