package mcp

import (
	"context"
	"net/http"
)

// requestIDKey is the context key for the correlation id of an MCP request.
type requestIDKey struct{}

// WithRequestID returns a new context carrying the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the correlation id from the context, if present.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// requestIDFromHTTP copies the correlation id set by the server middleware
// into the tool call context.
func requestIDFromHTTP(ctx context.Context, r *http.Request) context.Context {
	id := r.Header.Get("X-Correlation-ID")
	if id == "" {
		id = r.Header.Get("X-Request-ID")
	}
	if id == "" {
		return ctx
	}
	return WithRequestID(ctx, id)
}
