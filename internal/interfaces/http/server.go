// Package http serves the ops surface: health, risk status and prometheus
// metrics. It is read-only; nothing here mutates engine state.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// StatusProvider is implemented by the per-account engine.
type StatusProvider interface {
	RiskStatus() interface{}
}

// StatusFunc adapts a closure to StatusProvider.
type StatusFunc func() interface{}

func (f StatusFunc) RiskStatus() interface{} { return f() }

// Server exposes /health, /riskz and /metrics.
type Server struct {
	router   *mux.Router
	status   StatusProvider
	limiter  *rate.Limiter
	logger   zerolog.Logger
	started  time.Time
}

func NewServer(status StatusProvider, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		status:  status,
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		logger:  logger.With().Str("component", "ops_http").Logger(),
		started: time.Now(),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/riskz", s.handleRisk).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.Use(s.rateLimit)

	return s
}

// Handler returns the composed HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving the ops endpoints on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("ops server listening")
	return srv.ListenAndServe()
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.status.RiskStatus())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
