// Package httpclient provides the pooled outbound HTTP transport shared by
// all backend calls.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// TransportConfig holds connection-pool settings for the outbound transport.
type TransportConfig struct {
	// MaxIdleConns controls the maximum number of idle (keep-alive)
	// connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle (keep-alive) connections
	// to keep per-host. The backend is a single host, so this effectively
	// sizes the pool.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays open.
	IdleConnTimeout time.Duration

	// DialTimeout bounds the TCP connect.
	DialTimeout time.Duration

	// KeepAlive is the interval between keep-alive probes.
	KeepAlive time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration
}

// DefaultTransportConfig returns pool settings sized for tens of concurrent
// streaming checkouts against one backend host.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// NewTransport creates a pooled transport from the given configuration.
// If config is nil, DefaultTransportConfig() is used. The transport is safe
// for concurrent use and is meant to be shared across clients.
func NewTransport(config *TransportConfig) *http.Transport {
	if config == nil {
		cfg := DefaultTransportConfig()
		config = &cfg
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewClient creates an HTTP client with the given overall timeout on top of
// a shared transport. Multiple clients may share one transport so long and
// short timeout paths reuse the same connection pool.
func NewClient(transport http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
