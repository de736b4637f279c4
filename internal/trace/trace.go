// Package trace carries a correlation id through the requests issued by a
// single store operation, so a delete and the list refresh that follows it
// can be matched in client and server logs.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey type for context keys
type ContextKey string

const (
	// CorrelationIDKey is the context key for the correlation id
	CorrelationIDKey ContextKey = "correlation_id"

	// CorrelationIDHeader is sent on every request made within an operation.
	CorrelationIDHeader = "X-Correlation-ID"
)

// GenerateID creates a new correlation id.
func GenerateID() string {
	return "op_" + uuid.NewString()
}

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID extracts the correlation id from context
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// Ensure keeps an existing correlation id or attaches a new one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := GetCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := GenerateID()
	return WithCorrelationID(ctx, id), id
}
