package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"webolla/config"
	"webolla/internal/core"
	"webolla/internal/gpu"
	"webolla/internal/metrics"
	"webolla/internal/webui"
)

// Server wraps the Echo server.
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// New creates a new HTTP server with all routes and middleware wired.
func New(cfg *config.Config, backend core.Backend, m *metrics.Metrics, collector *gpu.Collector) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := NewHandler(cfg, backend, m, collector)

	// Global middleware stack (order matters)
	e.Use(RequestIDMiddleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	bodySizeLimit := cfg.BodySizeLimit
	if bodySizeLimit <= 0 {
		bodySizeLimit = config.DefaultBodySizeLimit
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(bodySizeLimit, 10)))

	// Web UI
	e.GET("/", webui.Index)
	e.GET("/index.html", webui.Index)

	// Public routes
	e.GET("/health", handler.Health)
	if cfg.MetricsEnabled && m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	// API routes
	e.POST("/api/ollama-action", handler.OllamaAction)
	e.GET("/api/models", handler.ListModels)
	e.GET("/api/status", handler.Status)
	e.GET("/api/gpu", handler.GPU)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler, allowing Server to be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
