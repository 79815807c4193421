package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/config"
	"github.com/linkforge/shortlink/internal/logsink"
	"github.com/linkforge/shortlink/internal/service"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *zap.Logger
	port   string
}

// NewServer wires the router, middlewares, and handlers into an HTTP server
func NewServer(cfg config.Config, registry service.Registry, accounts service.Accounts, sink *logsink.Sink, logger *zap.Logger) (*Server, error) {
	router, err := NewRouter(cfg, registry, accounts, sink, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		port:   cfg.Server.Port,
	}, nil
}

// NewRouter builds the full route tree. Split from NewServer so tests can
// exercise the routing without binding a port.
func NewRouter(cfg config.Config, registry service.Registry, accounts service.Accounts, sink *logsink.Sink, logger *zap.Logger) (http.Handler, error) {
	registerer := prometheus.NewRegistry()
	registerer.MustRegister(collectors.NewGoCollector())
	metrics := NewMetrics(registerer)

	handler := NewHandler(registry, accounts, cfg.Server.BaseURL, logger, metrics)

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit.Redirect)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect rate %q: %w", cfg.RateLimit.Redirect, err)
	}
	redirectLimiter := limitermw.NewMiddleware(limiter.New(memory.NewStore(), rate))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger, sink, metrics))

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registerer, promhttp.HandlerOpts{}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(accounts))

		r.Route("/urls", func(r chi.Router) {
			r.Post("/", handler.CreateLink)
			r.Get("/", handler.ListLinks)
			r.Put("/{shortKey}", handler.UpdateLink)
			r.Delete("/{shortKey}", handler.DeleteLink)
			r.Get("/{shortKey}/stats", handler.LinkStats)
		})

		r.Get("/dashboard/stats", handler.DashboardStats)
	})

	r.Group(func(r chi.Router) {
		r.Use(redirectLimiter.Handler)
		r.Get("/{shortKey}", handler.Redirect)
	})

	return r, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("port", s.port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}
