package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace/noop"

	authapp "mobipaid-gateway/internal/application/auth"
	gatewayapp "mobipaid-gateway/internal/application/gateway"
	notificationapp "mobipaid-gateway/internal/application/notification"
	orderapp "mobipaid-gateway/internal/application/order"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
	restmiddleware "mobipaid-gateway/internal/presentation/rest/middleware"
)

// MockPaymentGateway モック決済ゲートウェイ
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) ID() string {
	return "mobipaid"
}

func (m *MockPaymentGateway) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPaymentGateway) Supports(feature string) bool {
	args := m.Called(feature)
	return args.Bool(0)
}

func (m *MockPaymentGateway) ProcessPayment(ctx context.Context, orderID int64, orderKey string) (*gatewayapp.ProcessPaymentResponse, error) {
	args := m.Called(ctx, orderID, orderKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gatewayapp.ProcessPaymentResponse), args.Error(1)
}

func (m *MockPaymentGateway) ProcessRefund(ctx context.Context, orderID int64, amount float64, reason string) (*gatewayapp.ProcessRefundResponse, error) {
	args := m.Called(ctx, orderID, amount, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gatewayapp.ProcessRefundResponse), args.Error(1)
}

func (m *MockPaymentGateway) Info() *gatewayapp.GatewayInfo {
	args := m.Called()
	return args.Get(0).(*gatewayapp.GatewayInfo)
}

// MockWebhookProcessor モック通知処理
type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) HandleWebhook(ctx context.Context, req *notificationapp.HandleWebhookRequest) (*notificationapp.HandleWebhookResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notificationapp.HandleWebhookResponse), args.Error(1)
}

// MockOrderService モック注文サービス
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetReceivedOrder(ctx context.Context, req *orderapp.GetReceivedOrderRequest) (*orderapp.OrderView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderView), args.Error(1)
}

func (m *MockOrderService) ChangeStatus(ctx context.Context, req *orderapp.ChangeStatusRequest) (*orderapp.ChangeStatusResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.ChangeStatusResponse), args.Error(1)
}

// MockTokenIssuer モックトークン発行
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueToken(ctx context.Context, req *authapp.IssueTokenRequest) (*authapp.IssueTokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authapp.IssueTokenResponse), args.Error(1)
}

// newTestEcho エラーハンドリングミドルウェア付きのEchoを作成
func newTestEcho() *echo.Echo {
	e := echo.New()
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	return e
}
