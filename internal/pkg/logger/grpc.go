package logger

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor logs unary calls, skipping the given full method names
func UnaryServerInterceptor(logger *Logger, skipMethods ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]struct{}, len(skipMethods))
	for _, m := range skipMethods {
		skip[m] = struct{}{}
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if _, ok := skip[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		requestID := incomingRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = WithRequestID(ctx, requestID)

		start := time.Now()
		resp, err := handler(ctx, req)

		st, _ := status.FromError(err)
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("service", path.Dir(info.FullMethod)[1:]),
			zap.String("rpc", path.Base(info.FullMethod)),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", st.Code().String()),
		}
		if err != nil {
			fields = append(fields, zap.String("message", st.Message()))
		}

		switch st.Code() {
		case codes.OK:
			logger.Info("gRPC call", fields...)
		case codes.Canceled, codes.DeadlineExceeded, codes.NotFound:
			logger.Warn("gRPC call", fields...)
		default:
			logger.Error("gRPC call", fields...)
		}
		return resp, err
	}
}

// RecoveryInterceptor converts a handler panic into codes.Internal
func RecoveryInterceptor(logger *Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC panic recovered",
					zap.String("request_id", GetRequestID(ctx)),
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stacktrace"),
				)
				err = status.Errorf(codes.Internal, "internal server error: %v", r)
			}
		}()
		return handler(ctx, req)
	}
}

func incomingRequestID(ctx context.Context) string {
	if requestID := GetRequestID(ctx); requestID != "" {
		return requestID
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-request-id"); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
