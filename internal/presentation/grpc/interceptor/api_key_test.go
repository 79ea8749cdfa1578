package interceptor

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"mobipaid-gateway/internal/infrastructure/config"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

func TestAPIKeyInterceptor(t *testing.T) {
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))

	tests := []struct {
		name     string
		cfg      *config.AdminAPIConfig
		md       metadata.MD
		wantCode codes.Code
	}{
		{
			name:     "正常系: 有効なAPIキー",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "secret"},
			md:       metadata.Pairs("x-api-key", "secret"),
			wantCode: codes.OK,
		},
		{
			name:     "正常系: 許可されたCIDRからのアクセス",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "secret", AllowedIPs: []string{"10.0.0.0/8"}},
			md:       metadata.Pairs("x-api-key", "secret", "x-forwarded-for", "10.1.2.3, 192.168.0.1"),
			wantCode: codes.OK,
		},
		{
			name:     "異常系: 管理APIが無効",
			cfg:      &config.AdminAPIConfig{Enabled: false, APIKey: "secret"},
			md:       metadata.Pairs("x-api-key", "secret"),
			wantCode: codes.PermissionDenied,
		},
		{
			name:     "異常系: APIキーなし",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "secret"},
			md:       metadata.MD{},
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "異常系: APIキーが異なる",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "secret"},
			md:       metadata.Pairs("x-api-key", "wrong"),
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "異常系: 許可されていないIP",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "secret", AllowedIPs: []string{"10.0.0.0/8"}},
			md:       metadata.Pairs("x-api-key", "secret", "x-real-ip", "192.168.1.1"),
			wantCode: codes.PermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor := APIKeyInterceptor(tt.cfg, logger)
			ctx := metadata.NewIncomingContext(context.Background(), tt.md)
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return "success", nil
			}

			resp, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: testMethod}, handler)

			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, "success", resp)
				return
			}
			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
		})
	}
}

func TestClientIP_FromPeer(t *testing.T) {
	ctx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP("172.16.0.5"), Port: 50000},
	})

	assert.Equal(t, "172.16.0.5", clientIP(ctx, metadata.MD{}))
}
