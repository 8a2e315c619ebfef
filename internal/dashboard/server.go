// Package dashboard serves the JSON API and minimal web shell that replaced
// the original interactive report UI.
package dashboard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/metrics"
	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/pipeline"
	"github.com/osegonte/fbintel/internal/storage"
)

// DataSource is the read contract the API needs; the Postgres repos and the
// CSV reader both satisfy it.
type DataSource interface {
	List(ctx context.Context, filter storage.MatchFilter) ([]model.Match, error)
	Summaries(ctx context.Context, tr storage.TimeRange, limit int) ([]storage.TeamSummary, error)
	CountBySource(ctx context.Context, tr storage.TimeRange) (map[string]int64, error)
}

// Collector triggers collection runs from the live progress endpoint.
type Collector interface {
	Run(ctx context.Context, from time.Time, days int, progress func(pipeline.DayEvent)) (*pipeline.Result, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	router    *mux.Router
	server    *http.Server
	data      DataSource
	collector Collector
	startedAt time.Time
}

// NewServer builds the server and verifies the port is free. collector may be
// nil, which disables the live collection endpoint.
func NewServer(cfg config.DashboardConfig, data DataSource, collector Collector) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", cfg.Port, err)
	}
	listener.Close()

	s := &Server{
		router:    mux.NewRouter(),
		data:      data,
		collector: collector,
		startedAt: time.Now(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.HandleFunc("/matches", s.handleMatches).Methods("GET")
	api.HandleFunc("/teams", s.handleTeams).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/competitions", s.handleCompetitions).Methods("GET")
	api.HandleFunc("/sources", s.handleSources).Methods("GET")

	if s.collector != nil {
		s.router.HandleFunc("/ws/collect", s.handleCollectWS)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("dashboard server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("dashboard shutdown: %w", err)
		}
		log.Info().Msg("dashboard server stopped")
		return nil
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		metrics.HTTPDuration.WithLabelValues(r.URL.Path, r.Method).Observe(time.Since(start).Seconds())
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
