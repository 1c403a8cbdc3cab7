package core

import (
	"context"
	"io"
)

// BackendResponse carries a non-streaming backend reply: the status and the
// fully-read body, forwarded to the client without re-serialization.
type BackendResponse struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Backend defines the operations the HTTP handlers need from the inference
// server client.
type Backend interface {
	// BaseURL returns the configured backend base URL, used in
	// unreachable-error messages and the status endpoint.
	BaseURL() string

	// Generate opens a streaming generate call (caller must close).
	Generate(ctx context.Context, req *GenerateRequest) (io.ReadCloser, error)

	// Chat opens a streaming chat call (caller must close).
	Chat(ctx context.Context, req *ChatRequest) (io.ReadCloser, error)

	// Pull asks the backend to download a model.
	Pull(ctx context.Context, model string) (*BackendResponse, error)

	// Delete removes a model from the backend.
	Delete(ctx context.Context, model string) (*BackendResponse, error)

	// Tags lists installed models.
	Tags(ctx context.Context) (*BackendResponse, error)

	// CheckAvailability reports whether the backend answers HTTP 200.
	CheckAvailability(ctx context.Context) error
}
