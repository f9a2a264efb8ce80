package testutil

import (
	"context"
	"net/http"

	"paddock/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context.
// This simulates what the request id and metadata middleware do in the server.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClientMetadata adds the request ID and client IP to the request context.
func WithClientMetadata(req *http.Request, requestID, clientIP string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	ctx = requestcontext.WithClientIP(ctx, clientIP)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
