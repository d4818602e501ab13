package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pantry/internal/config"
	"pantry/internal/domain"
	"pantry/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the pantry over a JSON REST API.
type HTTPServer struct {
	cfg    *config.APIConfig
	svc    domain.PantryService
	loc    *time.Location
	now    func() time.Time
	server *http.Server
	auth   *HTTPAuth
	log    zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, svc domain.PantryService, loc *time.Location, logger *zerolog.Logger) *HTTPServer {
	if loc == nil {
		loc = time.Local
	}
	srv := &HTTPServer{cfg: cfg, svc: svc, loc: loc, now: time.Now, log: zerolog.Nop()}
	if logger != nil {
		srv.log = logger.With().Str("component", "http").Logger()
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealthz)

	mux.HandleFunc("GET /api/v1/items", srv.handleListItems)
	mux.HandleFunc("POST /api/v1/items", srv.handleCreateItem)
	mux.HandleFunc("GET /api/v1/items/{id}", srv.handleGetItem)
	mux.HandleFunc("PUT /api/v1/items/{id}", srv.handleUpdateItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", srv.handleDeleteItem)
	mux.HandleFunc("POST /api/v1/items/{id}/consume", srv.handleConsumeItem)

	mux.HandleFunc("GET /api/v1/barcodes/{code}", srv.handleBarcode)
	mux.HandleFunc("GET /api/v1/timeline", srv.handleTimeline)
	mux.HandleFunc("GET /api/v1/expiring", srv.handleExpiring)

	mux.HandleFunc("GET /api/v1/categories", srv.handleListCategories)
	mux.HandleFunc("POST /api/v1/categories", srv.handleCreateCategory)
	mux.HandleFunc("POST /api/v1/categories/reorder", srv.handleReorderCategories)
	mux.HandleFunc("PATCH /api/v1/categories/{name}", srv.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/v1/categories/{name}", srv.handleDeleteCategory)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
