package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// LoggingInterceptor アクセスログインターセプター
func LoggingInterceptor(logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		st, _ := status.FromError(err)
		fields := map[string]interface{}{
			"method":      info.FullMethod,
			"code":        st.Code().String(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Warn(ctx, "gRPC request failed", fields)
		} else {
			logger.Info(ctx, "gRPC request", fields)
		}

		return resp, err
	}
}
