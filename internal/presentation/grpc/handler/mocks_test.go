package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
	orderapp "mobipaid-gateway/internal/application/order"
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

// MockOrderService モック注文サービス
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetOrder(ctx context.Context, req *orderapp.GetOrderRequest) (*orderapp.OrderView, error) {
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
