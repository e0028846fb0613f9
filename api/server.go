// Package api provides the HTTP REST API server for catalystiv.
//
// It exposes endpoints for IV analytics, catalyst screening and scoring,
// options research summaries and clinical-trial lookups.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"

	"github.com/seenimoa/catalystiv/internal/analysis/derivatives"
	"github.com/seenimoa/catalystiv/internal/config"
	"github.com/seenimoa/catalystiv/internal/datasource"
	"github.com/seenimoa/catalystiv/internal/logging"
	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// Version is reported by the health endpoint. Set by the binary at startup.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	registry *provider.Registry
	agg      *datasource.Aggregator
	validate *validator.Validate
}

// NewServer creates a configured API server with all routes and middleware.
// A nil registry means the global one.
func NewServer(cfg *config.Config, reg *provider.Registry) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if reg == nil {
		reg = provider.Global()
	}

	srv := &Server{
		cfg:      cfg,
		registry: reg,
		agg:      datasource.NewAggregator(reg, cfg.Research.ConcurrentBuilds),
		validate: validator.New(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown on SIGINT/SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", Version).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-done:
	}
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.API.RequestTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.cfg.API.RequestTimeoutSec) * time.Second
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Registry and settings
		r.Get("/providers", s.handleProviders)
		r.Get("/config", s.handleGetConfig)

		// IV analytics and chain filtering
		r.Post("/options/iv", s.handleIVMetrics)
		r.Post("/options/term_structure", s.handleTermStructure)
		r.Post("/options/surface", s.handleSurface)
		r.Post("/options/catalyst_screen", s.handleCatalystScreen)
		r.Post("/options/score", s.handleScore)

		// Catalysts
		r.Post("/catalysts/combine", s.handleCombine)
		r.Post("/catalysts/expirations", s.handleCatalystExpirations)

		// Research
		r.Post("/research", s.handleResearch)
		r.Post("/research/batch", s.handleResearchBatch)

		// Clinical trials
		r.Get("/clinical_trials", s.handleClinicalTrials)
	})

	return r
}

// ============================================================
// Response envelope
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"today":   utils.FormatDate(utils.Today()),
		},
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"providers": s.registry.List(),
			"coverage":  s.registry.ModelCoverage(),
		},
	})
}

// decode reads a JSON body into v and runs the struct validators.
func (s *Server) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &requestError{msg: "invalid request body: " + err.Error()}
	}
	if err := s.validate.Struct(v); err != nil {
		return err
	}
	return nil
}

// requestError is a malformed request detected before any analytics ran.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// statusFor maps an error to its HTTP status: bad input is 400, an empty
// answer is 404, anything else is 500.
func statusFor(err error) int {
	var (
		reqErr      *requestError
		valErr      *derivatives.ValidationError
		fieldErrs   validator.ValidationErrors
		invalid     *provider.ErrInvalidParam
		missing     *provider.ErrMissingParam
		notFound    *provider.ErrProviderNotFound
		unsupported *provider.ErrModelNotSupported
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &valErr), errors.As(err, &fieldErrs),
		errors.As(err, &invalid), errors.As(err, &missing):
		return http.StatusBadRequest
	case provider.IsEmptyData(err), errors.As(err, &notFound), errors.As(err, &unsupported):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", logging.RequestID(r.Context())).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
