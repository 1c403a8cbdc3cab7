// Package main is the entry point for the webolla proxy server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"webolla/config"
	"webolla/internal/gpu"
	"webolla/internal/httpclient"
	"webolla/internal/metrics"
	"webolla/internal/ollama"
	"webolla/internal/server"
)

func main() {
	// Load configuration once; everything downstream receives it explicitly.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogFormat)

	slog.Info("starting webolla",
		"ollama_url", cfg.OllamaBaseURL,
		"generate_timeout", cfg.GenerateTimeout,
	)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		slog.Info("prometheus metrics enabled", "endpoint", "/metrics")
	} else {
		slog.Info("prometheus metrics disabled")
	}

	// One pooled transport shared by the long and short timeout clients.
	backend := ollama.New(ollama.Config{
		BaseURL:         cfg.OllamaBaseURL,
		GenerateTimeout: cfg.GenerateTimeout,
		ListTimeout:     cfg.ListTimeout,
		Transport:       httpclient.NewTransport(nil),
	})

	collector := gpu.NewCollector(cfg.GPUCardPath)

	srv := server.New(cfg, backend, m, collector)

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}

// setupLogging installs the default slog handler: JSON for machine
// consumption, tint for a readable local terminal.
func setupLogging(format string) {
	var handler slog.Handler
	if format == "pretty" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
