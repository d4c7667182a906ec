package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-feed-service/internal/feedview"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
	"github.com/couchcryptid/quake-feed-service/internal/pipeline"
	"github.com/couchcryptid/quake-feed-service/internal/settings"
)

const maxSettingsBody = 64 << 10

// FeedAPI is the feed controller as seen by the HTTP layer.
type FeedAPI interface {
	Snapshot() feedview.Snapshot
	Refresh(ctx context.Context) error
	Settings() map[string]string
	UpdateSettings(ctx context.Context, values map[string]string) error
}

// Server exposes the feed API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	feed       FeedAPI
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe, metrics, and /api routes.
func NewServer(addr string, feed FeedAPI, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		feed:   feed,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/earthquakes", s.handleEarthquakes)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleEarthquakes(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.feed.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.Refresh(r.Context()); err != nil {
		s.writeFeedError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.feed.Settings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingsBody))
	if err := dec.Decode(&values); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "settings body must be a JSON object of strings"})
		return
	}
	if len(values) == 0 {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "no settings given"})
		return
	}

	if err := s.feed.UpdateSettings(r.Context(), values); err != nil {
		s.writeFeedError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.feed.Settings())
}

func (s *Server) writeFeedError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, settings.ErrInvalidSetting):
		status = http.StatusBadRequest
	case errors.Is(err, loader.ErrLoadInProgress):
		status = http.StatusConflict
	case errors.Is(err, pipeline.ErrOffline):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("feed request failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
