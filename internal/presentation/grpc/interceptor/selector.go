package interceptor

import (
	"context"

	"google.golang.org/grpc"
)

// ForMethods 指定したメソッドにのみインターセプターを適用する
func ForMethods(next grpc.UnaryServerInterceptor, fullMethods ...string) grpc.UnaryServerInterceptor {
	targets := make(map[string]struct{}, len(fullMethods))
	for _, m := range fullMethods {
		targets[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, ok := targets[info.FullMethod]; !ok {
			return handler(ctx, req)
		}
		return next(ctx, req, info, handler)
	}
}
