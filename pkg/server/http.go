// Package server builds the HTTP and gRPC servers with the shared middleware stack.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHTTPServer creates an HTTP server listening on cfg.Port with the configured limits.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter creates a chi router with request id, access log and panic recovery middleware.
// Unknown routes and methods get the same JSON error body as handler errors.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.RespondError(w, logger, http.StatusNotFound, "Resource not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		web.RespondError(w, logger, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
	})
	return mux
}
