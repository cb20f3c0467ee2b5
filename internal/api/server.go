// Package api serves pedigree analyses over HTTP.
//
// One pedigree is loaded at startup and shared read-only by every request.
// Cone and climb results go through the pipeline runner, so they are
// cached and can be saved as reports.
//
// Routes:
//
//	GET  /healthz
//	GET  /individuals/{id}
//	GET  /individuals/{id}/lineage[?ordered=true]
//	GET  /individuals/{id}/descendants
//	GET  /probands[?limit=N]
//	POST /cones
//	POST /climb
//	GET  /reports[?kind=climb&limit=N]
//	GET  /reports/{id}
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pedsignal/pkg/observability"
	"github.com/matzehuels/pedsignal/pkg/pipeline"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// Server holds the shared state of the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	pedigree *pipeline.Pedigree
	logger   *log.Logger
	version  string
}

// New creates a server for ped. version is reported by /healthz.
func New(runner *pipeline.Runner, ped *pipeline.Pedigree, logger *log.Logger, version string) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, pedigree: ped, logger: logger, version: version}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/individuals/{id}", func(r chi.Router) {
		r.Get("/", s.handleIndividual)
		r.Get("/lineage", s.handleLineage)
		r.Get("/descendants", s.handleDescendants)
	})
	r.Get("/probands", s.handleProbands)

	r.Post("/cones", s.handleCones)
	r.Post("/climb", s.handleClimb)

	r.Get("/reports", s.handleListReports)
	r.Get("/reports/{id}", s.handleReport)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no such route"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "individuals", s.pedigree.Graph.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logRequests logs every request and forwards it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
