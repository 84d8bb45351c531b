package services

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	subtitleIDKey contextKey = "subtitle_id"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSubtitleID annotates context with a library subtitle identifier.
func WithSubtitleID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, subtitleIDKey, id)
}

// SubtitleIDFromContext extracts the library subtitle identifier if present.
func SubtitleIDFromContext(ctx context.Context) (int64, bool) {
	switch val := ctx.Value(subtitleIDKey).(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}
