package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webolla/config"
	"webolla/internal/core"
	"webolla/internal/gpu"
	"webolla/internal/metrics"
)

func newTestServer(t *testing.T, backend *mockBackend, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Port:           "8080",
		MetricsEnabled: m != nil,
		BodySizeLimit:  config.DefaultBodySizeLimit,
	}
	srv := New(cfg, backend, m, gpu.NewCollector(t.TempDir()))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_Routes(t *testing.T) {
	backend := &mockBackend{
		baseURL: "http://localhost:11434",
		resp:    &core.BackendResponse{StatusCode: http.StatusOK, Body: []byte(`{"models":[]}`)},
	}
	ts := newTestServer(t, backend, metrics.New())

	for _, tc := range []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/api/models", http.StatusOK},
		{http.MethodGet, "/api/gpu", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/ollama-action", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/models", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	} {
		req, err := http.NewRequest(tc.method, ts.URL+tc.path, nil)
		require.NoError(t, err)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.want, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	ts := newTestServer(t, &mockBackend{}, nil)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RequestIDHeader(t *testing.T) {
	ts := newTestServer(t, &mockBackend{}, nil)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), "every response carries a request id")
}

func TestServer_InboundRequestIDKept(t *testing.T) {
	ts := newTestServer(t, &mockBackend{}, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-me")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trace-me", resp.Header.Get("X-Request-ID"))
}

func TestServer_EndToEndGenerateStream(t *testing.T) {
	backend := &mockBackend{
		streamBody: `{"response":"Hi","done":false}` + "\n" + `{"response":"!","done":true}` + "\n",
	}
	ts := newTestServer(t, backend, nil)

	resp, err := ts.Client().Post(ts.URL+"/api/ollama-action", "application/json",
		strings.NewReader(`{"actionType":"generate","model":"llama3","prompt":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(body), "data: [DONE]\n\n"))
	assert.Equal(t, 1, backend.generateCalls)
	assert.Equal(t, "llama3", backend.lastModel)
}

func TestServer_IndexServesUI(t *testing.T) {
	ts := newTestServer(t, &mockBackend{}, nil)

	resp, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<html")
}
