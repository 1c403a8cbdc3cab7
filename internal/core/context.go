package core

import "context"

// ctxKey is unexported so no other package can collide with our keys.
type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID attaches the request ID to the context. The backend client
// reads it back to propagate X-Request-ID across the proxy hop.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request ID carried by the context, or "" when
// none was attached.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
