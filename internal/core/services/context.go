package services

import "context"

// Use a private type for context keys to avoid collisions
type serviceContextKey string

const (
	ctxKeyRequestID serviceContextKey = "request_id"
)

// ContextWithRequestID attaches the request id stamped on published envelopes
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestIDFromContext returns the request id, or "" when none was attached
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
