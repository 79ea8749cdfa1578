package interceptor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
)

func TestForMethods(t *testing.T) {
	denyAll := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return nil, errors.New("denied")
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	}

	selected := ForMethods(denyAll, "/svc/Protected")

	_, err := selected(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Protected"}, handler)
	assert.EqualError(t, err, "denied")

	resp, err := selected(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Open"}, handler)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
