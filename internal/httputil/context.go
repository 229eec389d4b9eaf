package httputil

import (
	"context"
)

// RequestInfo carries per-request metadata set by the middleware chain:
// a correlation id and the client address, used for logging and audit
// records.
type RequestInfo struct {
	RequestID string
	SourceIP  string
}

type requestInfoKey struct{}

// WithRequestInfo attaches request metadata to the context.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFromContext retrieves request metadata, if present.
func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
