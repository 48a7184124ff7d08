// Package http exposes the recommendation, search and playback-session API together with the
// health, readiness and metrics endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"moodtune/internal/core"
)

const shutdownTimeout = 10 * time.Second

// Flood limiting scopes of the expensive routes.
const (
	scopeRecommend = "recommend"
	scopeSearch    = "search"
	scopeSession   = "session"
	scopeExtend    = "extend"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
	api     *API
}

func NewServer(config *core.ServerConfig, api *API, metrics *Metrics, logger *zap.Logger) *Server {
	s := &Server{
		config:  config,
		logger:  logger,
		metrics: metrics,
		api:     api,
	}
	s.server = createHTTPServer(config, s.setupRoutes())
	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	s.handle(mux, "POST /recommend", scopeRecommend, s.api.Recommend)
	s.handle(mux, "POST /search", scopeSearch, s.api.Search)

	s.handle(mux, "POST /sessions", scopeSession, s.api.CreateSession)
	s.handle(mux, "GET /sessions/{id}", "", s.api.GetSession)
	s.handle(mux, "DELETE /sessions/{id}", "", s.api.DeleteSession)
	s.handle(mux, "POST /sessions/{id}/mood", scopeSession, s.api.RestartSession)
	s.handle(mux, "POST /sessions/{id}/next", "", s.api.Next)
	s.handle(mux, "POST /sessions/{id}/previous", "", s.api.Previous)
	s.handle(mux, "POST /sessions/{id}/seek", "", s.api.Seek)
	s.handle(mux, "POST /sessions/{id}/ended", "", s.api.TrackEnded)
	s.handle(mux, "POST /sessions/{id}/extend", scopeExtend, s.api.Extend)

	s.handle(mux, "GET /moods", "", s.api.Moods)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "moodtune"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ready",
			"service":  "moodtune",
			"sessions": s.api.sessions.Len(),
		})
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	s.handle(mux, "GET /{$}", "", s.api.Index)

	return mux
}

// handle registers handler under pattern with request instrumentation and, for a non-empty
// scope, flood limiting.
func (s *Server) handle(mux *http.ServeMux, pattern, scope string, handler http.HandlerFunc) {
	var h http.Handler = handler
	if scope != "" {
		h = s.api.limit(scope, h)
	}
	mux.Handle(pattern, s.instrument(pattern, h))
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}
