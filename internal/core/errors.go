package core

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorType classifies where a failure happened.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a client error (4xx); never retried.
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeBackendUnreachable indicates a network-level failure before
	// any backend response (502).
	ErrorTypeBackendUnreachable ErrorType = "backend_unreachable"
	// ErrorTypeBackend indicates the backend answered with a non-200 status;
	// its status and diagnostic are forwarded to the client.
	ErrorTypeBackend ErrorType = "backend_error"
	// ErrorTypeInternal indicates a proxy-side failure.
	ErrorTypeInternal ErrorType = "internal_error"
)

// ProxyError is the error type surfaced at the HTTP boundary. All
// backend-facing failures are translated into one of these; nothing is
// propagated further up and nothing is retried.
type ProxyError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Original error for logs, never exposed to clients.
	Err error `json:"-"`
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the status code to respond with.
func (e *ProxyError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeBackendUnreachable, ErrorTypeBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to the wire shape written to clients.
func (e *ProxyError) ToJSON() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewInvalidRequestError creates a client error (400).
func NewInvalidRequestError(message string, err error) *ProxyError {
	return &ProxyError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewBackendUnreachableError creates a 502 naming the backend base URL so the
// operator can tell at a glance which server was down.
func NewBackendUnreachableError(baseURL string, err error) *ProxyError {
	return &ProxyError{
		Type:       ErrorTypeBackendUnreachable,
		Message:    "could not connect to Ollama at " + baseURL,
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

// NewBackendError forwards a backend application error: the backend's own
// status code with its trimmed body as the diagnostic.
func NewBackendError(statusCode int, body []byte) *ProxyError {
	return &ProxyError{
		Type:       ErrorTypeBackend,
		Message:    strings.TrimSpace(string(body)),
		StatusCode: statusCode,
	}
}

// NewInternalError creates a proxy-side failure (500).
func NewInternalError(message string, err error) *ProxyError {
	return &ProxyError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}
