// Package metrics provides the Prometheus collectors for the proxy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeClientError = "client_error"
	OutcomeBackendErr  = "backend_error"
	OutcomeUnreachable = "backend_unreachable"
)

// Metrics holds the proxy's collectors on a private registry so tests can
// construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// Requests counts completed action requests by action type and outcome.
	Requests *prometheus.CounterVec

	// FramesForwarded counts SSE data frames relayed to clients,
	// excluding the [DONE] sentinel.
	FramesForwarded prometheus.Counter

	// SkippedLines counts backend stream lines dropped because they failed
	// JSON parsing. Malformed lines never abort a stream; this counter is
	// what makes the policy observable.
	SkippedLines prometheus.Counter

	// BackendErrors counts failed backend calls by the proxy endpoint that
	// issued them.
	BackendErrors *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the standard Go
// and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webolla_requests_total",
			Help: "Completed action requests by action type and outcome.",
		}, []string{"action", "outcome"}),
		FramesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webolla_sse_frames_forwarded_total",
			Help: "SSE data frames relayed to clients.",
		}),
		SkippedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webolla_stream_lines_skipped_total",
			Help: "Backend stream lines dropped due to JSON parse failures.",
		}),
		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webolla_backend_errors_total",
			Help: "Failed backend calls by proxy endpoint.",
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.FramesForwarded,
		m.SkippedLines,
		m.BackendErrors,
	)

	return m
}

// Handler returns the HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
