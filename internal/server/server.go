// Package server exposes the gateway and recorder over HTTP. Route-layer
// failures of the AI subsystem never surface as 5xx: degraded calls still
// return a well-formed success payload.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestTimeout = 60 * time.Second

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
}

// New creates a server with the standard middleware chain and the given
// handler's routes mounted.
func New(port int, logger *slog.Logger, h *Handler) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(requestTimeout))
	r.Use(middleware.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "laila-gateway")
	})

	r.Post("/api/chat", h.HandleChat)
	r.Get("/api/models", h.HandleModels)
	r.Get("/api/config", h.HandleConfig)
	r.Get("/api/logs", h.HandleLogs)
	r.Get("/api/logs/count", h.HandleLogCount)

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.Int("port", s.Port))
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.Router,
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
	}
	return srv.ListenAndServe()
}
