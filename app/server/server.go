package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/logging"
	"github.com/aromadb/aroma-catalog/metrics"
	"github.com/aromadb/aroma-catalog/models"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	MetricsPath     string
	ShutdownTimeout time.Duration
	Store           *models.Store
	Logger          *zap.Logger
}

// Server wraps an http.Server carrying the catalog routes.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds the route table and the middleware chain. The metrics
// middleware runs innermost so it sees the matched route pattern.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.L()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	router := newRouter(cfg.Store, catalog.NewService(cfg.Store), cfg.MetricsPath)

	var handler http.Handler = metrics.Middleware(router)
	handler = logging.Middleware(cfg.Logger)(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(handler)

	cfg.Logger.Debug("http handler chain prepared",
		zap.String("addr", cfg.Addr),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
	)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	s.config.Logger.Info("server starting listener", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.config.Logger.Info("server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
