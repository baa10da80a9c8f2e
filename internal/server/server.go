// Package server exposes PRD decisions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getlawrence/prdgate/internal/backlog"
	"github.com/getlawrence/prdgate/internal/logger"
	"github.com/getlawrence/prdgate/internal/prd"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Server serves decision endpoints
type Server struct {
	router   *mux.Router
	handler  http.Handler
	policy   prd.Policy
	parser   *backlog.Parser
	metrics  *Metrics
	registry *prometheus.Registry
	limiter  *clientLimiter
	log      logger.Logger
}

// Option configures a Server
type Option func(*Server)

// WithRateLimit limits each client to rps requests per second on the
// decision endpoints. A zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = newClientLimiter(rps, burst)
		}
	}
}

// New creates a server using the given policy. Metrics are kept in a private
// registry exposed on /metrics.
func New(policy prd.Policy, log logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Nop()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		router:   mux.NewRouter(),
		policy:   policy,
		parser:   backlog.NewParser(),
		metrics:  NewMetrics(reg),
		registry: reg,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	s.handler = s.requestIDMiddleware(s.router)
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) setupRoutes() {
	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Full paths on the main router keep method mismatches reported as 405
	s.router.Handle("/v1/decisions", s.limit(http.HandlerFunc(s.handleDecision))).Methods(http.MethodPost)
	s.router.Handle("/v1/scan", s.limit(http.HandlerFunc(s.handleScan))).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("route not found"))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})
}

// requestIDMiddleware propagates or assigns a request ID
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.ObserveRequest(route, wrapper.statusCode, time.Since(start).Seconds())
		s.log.Debugf("%v %s %s %d %v", r.Context().Value(requestIDKey), r.Method, r.URL.Path, wrapper.statusCode, time.Since(start))
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Run listens on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Logf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Logf("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}
