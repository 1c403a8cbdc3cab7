// Package ollama provides the HTTP client for the backend inference server.
//
// The client makes exactly one backend call per proxy request and surfaces
// every failure immediately; there is no retry, backoff, or circuit breaking
// anywhere in this package.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"webolla/internal/core"
	"webolla/internal/httpclient"
)

// Backend endpoint paths.
const (
	generatePath = "/api/generate"
	chatPath     = "/api/chat"
	tagsPath     = "/api/tags"
	pullPath     = "/api/pull"
	deletePath   = "/api/delete"
)

// Config holds client construction options.
type Config struct {
	// BaseURL is the backend base URL without a trailing slash.
	BaseURL string

	// GenerateTimeout bounds generate/chat/pull/delete calls.
	GenerateTimeout time.Duration

	// ListTimeout bounds tags and availability calls.
	ListTimeout time.Duration

	// Transport is the shared pooled transport. Nil falls back to a
	// default pool.
	Transport http.RoundTripper
}

// Client talks to the backend inference server. Both underlying HTTP clients
// share one pooled transport, so concurrent streaming checkouts and the
// UI's short status probes draw from the same connection pool.
type Client struct {
	baseURL string
	long    *http.Client
	short   *http.Client
}

// New creates a backend client from the given configuration.
func New(cfg Config) *Client {
	transport := cfg.Transport
	if transport == nil {
		transport = httpclient.NewTransport(nil)
	}
	return &Client{
		baseURL: cfg.BaseURL,
		long:    httpclient.NewClient(transport, cfg.GenerateTimeout),
		short:   httpclient.NewClient(transport, cfg.ListTimeout),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate opens a streaming generate call. The returned body is the
// backend's newline-delimited JSON stream; the caller must close it.
func (c *Client) Generate(ctx context.Context, req *core.GenerateRequest) (io.ReadCloser, error) {
	return c.doStream(ctx, http.MethodPost, generatePath, req)
}

// Chat opens a streaming chat call. The returned body is the backend's
// newline-delimited JSON stream; the caller must close it.
func (c *Client) Chat(ctx context.Context, req *core.ChatRequest) (io.ReadCloser, error) {
	return c.doStream(ctx, http.MethodPost, chatPath, req)
}

// Pull asks the backend to download a model. The backend's status and body
// are returned as-is for passthrough.
func (c *Client) Pull(ctx context.Context, model string) (*core.BackendResponse, error) {
	return c.do(ctx, c.long, http.MethodPost, pullPath, core.ModelActionRequest{Name: model})
}

// Delete removes a model from the backend. The backend's status and body
// are returned as-is for passthrough.
func (c *Client) Delete(ctx context.Context, model string) (*core.BackendResponse, error) {
	return c.do(ctx, c.long, http.MethodDelete, deletePath, core.ModelActionRequest{Name: model})
}

// Tags lists installed models. Bounded by the short timeout so a backend
// stuck in a long generation does not hang the listing.
func (c *Client) Tags(ctx context.Context) (*core.BackendResponse, error) {
	return c.do(ctx, c.short, http.MethodGet, tagsPath, nil)
}

// CheckAvailability probes the backend's tags endpoint to determine
// reachability. Returns nil only if the backend answered HTTP 200.
func (c *Client) CheckAvailability(ctx context.Context) error {
	resp, err := c.do(ctx, c.short, http.MethodGet, tagsPath, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return core.NewBackendError(resp.StatusCode, resp.Body)
	}
	return nil
}

// doStream issues a request on the long-timeout client and hands back the
// raw response body for incremental reading. Non-200 responses are read in
// full and converted to a ProxyError carrying the backend's diagnostic.
func (c *Client) doStream(ctx context.Context, method, path string, body any) (io.ReadCloser, error) {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.long.Do(req)
	if err != nil {
		return nil, core.NewBackendUnreachableError(c.baseURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			respBody = []byte("failed to read error response")
		}
		_ = resp.Body.Close()
		return nil, core.NewBackendError(resp.StatusCode, respBody)
	}

	return resp.Body, nil
}

// do executes a request and reads the whole response. Only transport-level
// failures become errors; any backend status is returned to the caller for
// passthrough or translation.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, body any) (*core.BackendResponse, error) {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.NewBackendUnreachableError(c.baseURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewBackendUnreachableError(c.baseURL, err)
	}

	return &core.BackendResponse{
		StatusCode:  resp.StatusCode,
		Body:        respBody,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// buildRequest creates the backend HTTP request bound to the inbound request
// context, so a client disconnect aborts the backend call instead of leaving
// an abandoned generation running server-side.
func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, core.NewInternalError("failed to marshal backend request", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, core.NewInternalError("failed to create backend request", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := core.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	return req, nil
}
