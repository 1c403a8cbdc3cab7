// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort            = "8080"
	DefaultOllamaBaseURL   = "http://localhost:11434"
	DefaultGenerateTimeout = 300 * time.Second
	DefaultListTimeout     = 5 * time.Second
	DefaultBodySizeLimit   = 10 * 1024 * 1024 // 10MB
	DefaultGPUCardPath     = "/sys/class/drm/card0/device"
)

// Config holds the application configuration. It is built once at startup
// and passed explicitly to every component; nothing re-reads the environment
// after Load returns.
type Config struct {
	// Port is the local listening port.
	Port string

	// OllamaBaseURL is the backend inference server base URL, without a
	// trailing slash.
	OllamaBaseURL string

	// GenerateTimeout bounds generate/chat/pull/delete calls. Long by
	// default: model inference is slow.
	GenerateTimeout time.Duration

	// ListTimeout bounds tags listing and the status probe. Short so a hung
	// backend does not stall the UI's connectivity poll.
	ListTimeout time.Duration

	// BodySizeLimit is the maximum inbound request body size in bytes.
	BodySizeLimit int64

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool

	// GPUCardPath is the sysfs device directory read for GPU telemetry.
	GPUCardPath string

	// LogFormat selects the log handler: "json" or "pretty".
	LogFormat string
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", DefaultPort),
		OllamaBaseURL:   strings.TrimRight(getEnv("OLLAMA_BASE_URL", DefaultOllamaBaseURL), "/"),
		GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT", DefaultGenerateTimeout),
		ListTimeout:     getEnvDuration("LIST_TIMEOUT", DefaultListTimeout),
		BodySizeLimit:   getEnvInt64("BODY_SIZE_LIMIT", DefaultBodySizeLimit),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		GPUCardPath:     getEnv("GPU_CARD_PATH", DefaultGPUCardPath),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}

	u, err := url.Parse(cfg.OllamaBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("OLLAMA_BASE_URL %q is not a valid URL", cfg.OllamaBaseURL)
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT %q is not a valid port number", cfg.Port)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvDuration reads a duration from an environment variable, returning the
// default if not set or invalid. Accepts either plain integers (interpreted
// as seconds) or Go duration strings (e.g., "10m", "1h30m").
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
