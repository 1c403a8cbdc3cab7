// Package server provides HTTP handlers and server setup for the proxy.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"webolla/config"
	"webolla/internal/core"
	"webolla/internal/gpu"
	"webolla/internal/metrics"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	cfg     *config.Config
	backend core.Backend
	metrics *metrics.Metrics
	gpu     *gpu.Collector
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(cfg *config.Config, backend core.Backend, m *metrics.Metrics, collector *gpu.Collector) *Handler {
	return &Handler{
		cfg:     cfg,
		backend: backend,
		metrics: m,
		gpu:     collector,
	}
}

// OllamaAction handles POST /api/ollama-action. It decodes the action
// request, validates the action type, and routes to the matching handler.
// No backend I/O happens before dispatch succeeds.
func (h *Handler) OllamaAction(c echo.Context) error {
	var req core.ActionRequest
	if err := c.Bind(&req); err != nil {
		h.countRequest("invalid", metrics.OutcomeClientError)
		return handleError(c, core.NewInvalidRequestError("invalid request payload: "+err.Error(), err))
	}

	if !core.KnownAction(req.ActionType) {
		h.countRequest("invalid", metrics.OutcomeClientError)
		return handleError(c, core.NewInvalidRequestError("unknown action type: "+req.ActionType, nil))
	}

	switch req.ActionType {
	case core.ActionGenerate:
		return h.generate(c, &req)
	case core.ActionChat:
		return h.chat(c, &req)
	case core.ActionPull:
		return h.pull(c, &req)
	default:
		return h.delete(c, &req)
	}
}

// generate relays a streaming generate call as SSE.
func (h *Handler) generate(c echo.Context, req *core.ActionRequest) error {
	backendReq := &core.GenerateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Stream:  true,
		Options: req.Params.Options(),
	}

	stream, err := h.backend.Generate(c.Request().Context(), backendReq)
	if err != nil {
		return h.backendFailure(c, core.ActionGenerate, err)
	}
	defer func() {
		_ = stream.Close() //nolint:errcheck
	}()

	return h.relayStream(c, stream, core.ActionGenerate)
}

// chat relays a streaming chat call as SSE.
func (h *Handler) chat(c echo.Context, req *core.ActionRequest) error {
	backendReq := &core.ChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   true,
		Options:  req.Params.Options(),
	}

	stream, err := h.backend.Chat(c.Request().Context(), backendReq)
	if err != nil {
		return h.backendFailure(c, core.ActionChat, err)
	}
	defer func() {
		_ = stream.Close() //nolint:errcheck
	}()

	return h.relayStream(c, stream, core.ActionChat)
}

// pull forwards a model pull to the backend and copies the reply verbatim.
func (h *Handler) pull(c echo.Context, req *core.ActionRequest) error {
	resp, err := h.backend.Pull(c.Request().Context(), req.Model)
	return h.passthrough(c, core.ActionPull, resp, err)
}

// delete forwards a model delete to the backend and copies the reply verbatim.
func (h *Handler) delete(c echo.Context, req *core.ActionRequest) error {
	resp, err := h.backend.Delete(c.Request().Context(), req.Model)
	return h.passthrough(c, core.ActionDelete, resp, err)
}

// passthrough writes a non-streaming backend reply to the client. A 200 body
// goes through byte-for-byte; a backend error status is translated into the
// standard error shape carrying the backend's own diagnostic.
func (h *Handler) passthrough(c echo.Context, action string, resp *core.BackendResponse, err error) error {
	if err != nil {
		return h.backendFailure(c, action, err)
	}

	if resp.StatusCode != http.StatusOK {
		h.countRequest(action, metrics.OutcomeBackendErr)
		return handleError(c, core.NewBackendError(resp.StatusCode, resp.Body))
	}

	h.countRequest(action, metrics.OutcomeOK)

	contentType := resp.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(http.StatusOK, contentType, resp.Body)
}

// ListModels handles GET /api/models: a short-timeout passthrough of the
// backend's tags listing.
func (h *Handler) ListModels(c echo.Context) error {
	resp, err := h.backend.Tags(c.Request().Context())
	if err != nil {
		h.countBackendError("models")
		return handleError(c, err)
	}

	if resp.StatusCode != http.StatusOK {
		h.countBackendError("models")
		return handleError(c, core.NewBackendError(resp.StatusCode, resp.Body))
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, resp.Body)
}

// Status handles GET /api/status. It always answers 200; backend problems
// only flip the connected flag, details are never surfaced here.
func (h *Handler) Status(c echo.Context) error {
	err := h.backend.CheckAvailability(c.Request().Context())
	if err != nil {
		h.countBackendError("status")
	}
	return c.JSON(http.StatusOK, core.Status{
		OllamaURL: h.backend.BaseURL(),
		Connected: err == nil,
		Port:      h.cfg.Port,
	})
}

// GPU handles GET /api/gpu with the current telemetry sample.
func (h *Handler) GPU(c echo.Context) error {
	return c.JSON(http.StatusOK, h.gpu.Sample())
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// backendFailure records metrics for a failed backend call and writes the
// error response.
func (h *Handler) backendFailure(c echo.Context, action string, err error) error {
	outcome := metrics.OutcomeBackendErr
	var proxyErr *core.ProxyError
	if errors.As(err, &proxyErr) && proxyErr.Type == core.ErrorTypeBackendUnreachable {
		outcome = metrics.OutcomeUnreachable
	}
	h.countRequest(action, outcome)
	h.countBackendError(action)
	return handleError(c, err)
}

func (h *Handler) countRequest(action, outcome string) {
	if h.metrics != nil {
		h.metrics.Requests.WithLabelValues(action, outcome).Inc()
	}
}

func (h *Handler) countBackendError(endpoint string) {
	if h.metrics != nil {
		h.metrics.BackendErrors.WithLabelValues(endpoint).Inc()
	}
}

// handleError converts proxy errors to HTTP responses at the boundary.
// This is the outermost layer: nothing is propagated further and nothing
// is retried.
func handleError(c echo.Context, err error) error {
	var proxyErr *core.ProxyError
	if errors.As(err, &proxyErr) {
		if proxyErr.HTTPStatusCode() >= http.StatusInternalServerError {
			slog.Error("request failed", "type", proxyErr.Type, "error", proxyErr.Message)
		}
		return c.JSON(proxyErr.HTTPStatusCode(), proxyErr.ToJSON())
	}

	slog.Error("unexpected error", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"error": map[string]any{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
