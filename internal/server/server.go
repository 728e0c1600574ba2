package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/PullBot_Go/internal/burn"
	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/database"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/eventlog"
	"github.com/osse101/PullBot_Go/internal/handler"
	"github.com/osse101/PullBot_Go/internal/inventory"
	"github.com/osse101/PullBot_Go/internal/ledger"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/metrics"
	"github.com/osse101/PullBot_Go/internal/pull"
	"github.com/osse101/PullBot_Go/internal/quota"
	"github.com/osse101/PullBot_Go/internal/ratelimit"
)

// Rate limit scopes
const (
	ScopePull = "pull"
	ScopeBurn = "burn"
)

// Options configures the HTTP server
type Options struct {
	Port           int
	APIKey         string
	Version        string
	TrustedProxies []string
}

// Services are the domain services exposed over HTTP. Limiter and EventLog
// may be nil.
type Services struct {
	DB        database.Pool
	Quota     quota.Service
	Pull      pull.Service
	Burn      burn.Service
	Inventory inventory.Service
	Ledger    ledger.Service
	EventLog  eventlog.Service
	Publisher event.Publisher
	Limiter   ratelimit.Limiter
	Clock     clock.Clock
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, svc Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, svc),
			ReadHeaderTimeout: ReadHeaderTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}
}

// NewRouter builds the chi router with the full middleware stack
func NewRouter(opts Options, svc Services) http.Handler {
	if svc.Clock == nil {
		svc.Clock = clock.NewRealClock()
	}

	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector(svc.Clock)

	r.Use(loggingMiddleware)
	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(svc.DB))
	r.Get("/version", handler.HandleVersion(opts.Version))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(RateLimitMiddleware(ScopePull, svc.Limiter, opts.TrustedProxies)).
			Post("/pull", handler.HandlePull(svc.Pull))
		r.Get("/allowance", handler.HandleGetAllowance(svc.Quota))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", handler.HandleGetInventory(svc.Inventory))
			r.Post("/lock", handler.HandleSetLocked(svc.Inventory))
		})

		r.Route("/burn", func(r chi.Router) {
			r.Use(RateLimitMiddleware(ScopeBurn, svc.Limiter, opts.TrustedProxies))
			r.Post("/preview", handler.HandleBurnPreview(svc.Burn))
			r.Post("/confirm", handler.HandleBurnConfirm(svc.Burn))
			r.Post("/cancel", handler.HandleBurnCancel(svc.Burn))
		})

		r.Get("/progression", handler.HandleGetProgression(svc.Ledger))

		r.Route("/admin", func(r chi.Router) {
			r.Route("/grants", func(r chi.Router) {
				r.Get("/", handler.HandleListGrants(svc.Quota))
				r.Post("/", handler.HandleCreateGrant(svc.Quota))
				r.Post("/{label}/deactivate", handler.HandleDeactivateGrant(svc.Quota))
			})
			r.Post("/daily-grant", handler.HandleDateGrant(svc.Quota, svc.Publisher, svc.Clock))
			r.Post("/birthday-grant", handler.HandleBirthdayGrant(svc.Quota, svc.Clock))
			if svc.EventLog != nil {
				r.Get("/events", handler.HandleListEvents(svc.EventLog))
			}
		})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseWriter captures the status code for request logs
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// loggingMiddleware tags the request with an ID and logs start and
// completion. Secret headers are redacted. Probe and scrape paths are skipped.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		if log.Enabled(ctx, slog.LevelDebug) {
			log.Debug(LogMsgRequestHeaders, "headers", sanitizeHeaders(r.Header))
		}

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

func sanitizeHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
			out[k] = []string{RedactedValue}
			continue
		}
		out[k] = v
	}
	return out
}

// Start serves until Stop is called
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
