package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/oggyb/wa-autoreply/internal/middleware"
	routes "github.com/oggyb/wa-autoreply/internal/router"
)

// Server owns the underlying http.Server instance.
type Server struct {
	http *http.Server
}

// NewHandler builds the routed handler wrapped in the middleware chain.
func NewHandler(deps routes.AppDeps, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, deps)

	return Chain(
		mux,
		middleware.RequestLogger(log),
		middleware.Metrics(),
	)
}

// New creates a new HTTP server bound to the given address and configured
// with the provided application dependencies and middleware chain.
func New(addr string, deps routes.AppDeps, log *slog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(deps, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start runs the HTTP server and blocks until ListenAndServe returns.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server, waiting for in-flight
// requests to complete until the given context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
