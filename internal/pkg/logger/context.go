package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	uidKey       contextKey = "uid"
)

// WithContext returns a child logger carrying request_id and uid from ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	fields := make([]zap.Field, 0, 2)
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if uid, ok := ctx.Value(uidKey).(int64); ok && uid > 0 {
		fields = append(fields, zap.Int64("uid", uid))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUID adds the authenticated caller id to context
func WithUID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
