// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"copyflow/internal/common/config"
	"copyflow/internal/common/errors"
	"copyflow/internal/common/logger"
	"copyflow/internal/generation"
	"copyflow/internal/history"
	"copyflow/internal/ratelimit"
	"copyflow/internal/usage"
)

// Generator runs the generation pipeline for one request.
type Generator interface {
	Generate(ctx context.Context, req *generation.Request) *generation.Outcome
}

// Options carries the optional collaborators. Any of them may be nil; the
// corresponding feature is simply skipped.
type Options struct {
	Limiter *ratelimit.Limiter
	Usage   *usage.Tracker
	History *history.Store
}

// Server is the HTTP adapter in front of the generation pipeline.
type Server struct {
	config    *config.Config
	generator Generator
	limiter   *ratelimit.Limiter
	usage     *usage.Tracker
	history   *history.Store
	logger    logger.Logger
	errors    *errors.HTTPHandler
	router    *mux.Router
}

func New(cfg *config.Config, generator Generator, opts Options, log logger.Logger) *Server {
	s := &Server{
		config:    cfg,
		generator: generator,
		limiter:   opts.Limiter,
		usage:     opts.Usage,
		history:   opts.History,
		logger:    log.With(map[string]interface{}{"component": "server"}),
		errors:    errors.NewHTTPHandler(log),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.metricsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// The generation routes exist both at the root, the original contract,
	// and under /api for clients already using the prefixed form.
	for _, prefix := range []string{"", "/api"} {
		gr := r.PathPrefix(prefix).Subrouter()
		gr.Use(s.rateLimitMiddleware)
		gr.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
		gr.HandleFunc("/generate/batch", s.handleGenerateBatch).Methods(http.MethodPost)
	}

	s.router = r
}

// Handler returns the fully wrapped handler. CORS sits outside the router so
// preflight requests get answered even for method mismatches.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": s.config.App.Name,
		"version": s.config.App.Version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response body", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
