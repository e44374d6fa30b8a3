// Package server exposes the library over a local HTTP API. The surface
// mirrors the CLI: search, batch classification, library listing, stats,
// and export.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marquee/internal/batch"
	"marquee/internal/config"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata/omdb"
	"marquee/internal/notifications"
	"marquee/internal/services"
)

// Server serves the HTTP API on the configured bind address.
type Server struct {
	bind     string
	logger   *slog.Logger
	store    *library.Store
	searcher omdb.Searcher
	pipeline *batch.Pipeline
	metrics  *metrics

	listener net.Listener
	server   *http.Server
}

// New wires the API server. The pipeline is built from the same searcher
// and store so batch requests behave exactly like the CLI batch command.
func New(cfg *config.Config, store *library.Store, searcher omdb.Searcher, notifier notifications.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrInvalidInput, "server", "new", "config is nil", nil)
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "server", "new", "api bind address is empty", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:     bind,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		store:    store,
		searcher: searcher,
		pipeline: batch.New(searcher, store, notifier, logger, batch.PolicyFromConfig(cfg)),
		metrics:  newMetrics(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/search", srv.handleSearch)
	mux.HandleFunc("/api/batch", srv.handleBatch)
	mux.HandleFunc("/api/movies", srv.handleMovies)
	mux.HandleFunc("/api/movies/", srv.handleMovie)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/export", srv.handleExport)
	mux.Handle("/metrics", promhttp.HandlerFor(srv.metrics.registry, promhttp.HandlerOpts{}))

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start begins serving and returns once the listener is bound. The server
// shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "server", "start", fmt.Sprintf("listen on %s", s.bind), err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound listen address, useful when the configured bind
// uses port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Handler exposes the routing stack for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		s.metrics.requests.WithLabelValues(r.Method, routeLabel(r.URL.Path)).Inc()
		next.ServeHTTP(w, r)
	})
}

// routeLabel collapses item paths so metrics cardinality stays bounded.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/movies/") {
		return "/api/movies/{id}"
	}
	return path
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrTransient):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
