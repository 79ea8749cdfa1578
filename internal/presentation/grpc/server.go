package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
	"mobipaid-gateway/internal/infrastructure/config"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
	"mobipaid-gateway/internal/presentation/grpc/handler"
	"mobipaid-gateway/internal/presentation/grpc/interceptor"
)

// Server gRPCサーバー
type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	port     int
	logger   *otelinfra.Logger
}

// NewServer 新しいgRPCサーバーを作成
func NewServer(
	cfg *config.Config,
	logger *otelinfra.Logger,
	gw gatewayapp.PaymentGateway,
	orders handler.OrderService,
) (*Server, error) {
	port := cfg.Server.GRPCPort
	if port == 0 {
		port = cfg.Server.Port + 1 // REST APIのポート+1を使用
	}
	address := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	return NewServerWithListener(cfg, logger, gw, orders, listener, port)
}

// NewServerWithListener リスナーを指定してgRPCサーバーを作成（テスト用）
func NewServerWithListener(
	cfg *config.Config,
	logger *otelinfra.Logger,
	gw gatewayapp.PaymentGateway,
	orders handler.OrderService,
	listener net.Listener,
	port int,
) (*Server, error) {
	// インターセプターを設定
	// ステータス変更はショップ本体からAPIキーで、それ以外の管理操作はJWTで認証する
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			interceptor.TracingInterceptor(otel.Tracer("mobipaid-gateway-grpc")),
			interceptor.LoggingInterceptor(logger),
			interceptor.ForMethods(
				interceptor.AuthInterceptor(&cfg.JWT, logger),
				handler.AdminService_ProcessRefund_FullMethodName,
				handler.AdminService_GetOrder_FullMethodName,
				handler.AdminService_GetGateway_FullMethodName,
			),
			interceptor.ForMethods(
				interceptor.APIKeyInterceptor(&cfg.AdminAPI, logger),
				handler.AdminService_ChangeOrderStatus_FullMethodName,
			),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	// gRPCサーバーを作成
	grpcServer := grpc.NewServer(opts...)

	// ハンドラーを登録
	handler.RegisterAdminServiceServer(grpcServer, handler.NewAdminHandler(gw, orders, logger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(handler.AdminServiceName, healthpb.HealthCheckResponse_SERVING)

	// リフレクションを有効化（開発環境用）
	if cfg.Environment == "development" {
		reflection.Register(grpcServer)
	}

	return &Server{
		server:   grpcServer,
		health:   healthServer,
		listener: listener,
		port:     port,
		logger:   logger,
	}, nil
}

// Start サーバーを起動
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "gRPC server starting", map[string]interface{}{"port": s.port})
	if err := s.server.Serve(s.listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop サーバーを停止
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping gRPC server", nil)
	s.health.Shutdown()

	// グレースフルシャットダウン
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	// タイムアウトを設定
	select {
	case <-stopped:
		s.logger.Info(ctx, "gRPC server stopped", nil)
		return nil
	case <-ctx.Done():
		// タイムアウトした場合は強制停止
		s.logger.Warn(ctx, "gRPC server shutdown timeout, forcing stop", nil)
		s.server.Stop()
		return ctx.Err()
	}
}

// Port サーバーのポート番号を返す
func (s *Server) Port() int {
	return s.port
}
