package interceptor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := otelinfra.NewLoggerWithWriter(noop.NewTracerProvider().Tracer("test"), &buf)
	interceptor := LoggingInterceptor(logger)

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: testMethod}, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "order not found")
	})

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "gRPC request failed")
	assert.Contains(t, buf.String(), testMethod)
	assert.Contains(t, buf.String(), "NotFound")
}
