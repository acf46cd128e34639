package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"parking-reservations/internal/logging"
	"parking-reservations/internal/parking"
)

type Options struct {
	Port             string
	ServiceName      string
	ReserveRateLimit float64
	ReserveBurst     int
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
	hub        *Hub
	hubCtx     context.Context
	cancelHub  context.CancelFunc
}

func NewServer(lot *parking.InstrumentedLot, opts Options) *Server {
	handler := NewHandler(lot, opts.ServiceName)
	hub := NewHub(lot.Registry)
	lot.OnChange(hub.Publish)

	burst := opts.ReserveBurst
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(opts.ReserveRateLimit)
	if opts.ReserveRateLimit <= 0 {
		limit = rate.Inf
	}
	limiters := NewClientLimiters(limit, burst)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(newMetricsRegistry(lot), promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/ws", hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/spots", handler.ListSpots)
		r.Get("/spots/available", handler.AvailableSpots)
		r.Get("/spots/{id}", handler.SpotDetails)
		r.Get("/durations", handler.Durations)
		r.Get("/grid", handler.Grid)
		r.With(RateLimitMiddleware(limiters)).Post("/reservations", handler.Reserve)
	})

	httpServer := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, cancelHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		hub:        hub,
		hubCtx:     hubCtx,
		cancelHub:  cancelHub,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP. The websocket hub is already running.
func (s *Server) Start() error {
	logging.Info(s.hubCtx, "starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	s.cancelHub()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
