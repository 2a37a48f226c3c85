package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-lot/internal/logging"
	"parking-lot/internal/parking"
)

type Server struct {
	httpServer *http.Server
}

// NewServer routes the parking API. Metrics are served from gatherer, which
// is usually prometheus.DefaultGatherer.
func NewServer(port string, service parking.Service, serviceName string, gatherer prometheus.Gatherer) *Server {
	handler := NewHandler(service, serviceName)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware(serviceName))
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api/parking", func(r chi.Router) {
		r.Post("/entry", handler.Enter)
		r.Post("/exit", handler.Exit)
		r.Get("/tickets/{ticketID}", handler.GetTicket)
		r.Get("/status", handler.GetStatus)
		r.Get("/find/{plate}", handler.FindByLicensePlate)
	})

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	logging.Logger().Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
