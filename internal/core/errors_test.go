package core

import (
	"errors"
	"net/http"
	"testing"
)

func TestBackendUnreachableError_NamesBaseURL(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendUnreachableError("http://localhost:11434", cause)

	if err.HTTPStatusCode() != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatusCode())
	}
	if got := err.Message; got != "could not connect to Ollama at http://localhost:11434" {
		t.Errorf("unexpected message: %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be preserved")
	}
}

func TestBackendError_TrimsBody(t *testing.T) {
	err := NewBackendError(http.StatusNotFound, []byte("model not found\n"))

	if err.HTTPStatusCode() != http.StatusNotFound {
		t.Errorf("expected backend status forwarded, got %d", err.HTTPStatusCode())
	}
	if err.Message != "model not found" {
		t.Errorf("expected trimmed body, got %q", err.Message)
	}
}

func TestProxyError_DefaultStatusByType(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrorTypeInvalidRequest, http.StatusBadRequest},
		{ErrorTypeBackendUnreachable, http.StatusBadGateway},
		{ErrorTypeBackend, http.StatusBadGateway},
		{ErrorTypeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		err := &ProxyError{Type: tt.errType, Message: "x"}
		if got := err.HTTPStatusCode(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.errType, tt.want, got)
		}
	}
}

func TestProxyError_ToJSON(t *testing.T) {
	err := NewInvalidRequestError("unknown action type: list", nil)

	payload := err.ToJSON()
	inner, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested error object, got %v", payload)
	}
	if inner["type"] != ErrorTypeInvalidRequest {
		t.Errorf("unexpected type: %v", inner["type"])
	}
	if inner["message"] != "unknown action type: list" {
		t.Errorf("unexpected message: %v", inner["message"])
	}
}
