package handler

import (
	"context"
	"errors"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
	orderapp "mobipaid-gateway/internal/application/order"
	"mobipaid-gateway/internal/domain/gateway"
	"mobipaid-gateway/internal/domain/order"
	"mobipaid-gateway/internal/domain/payment_session"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// OrderService 注文の取得とステータス変更
type OrderService interface {
	GetOrder(ctx context.Context, req *orderapp.GetOrderRequest) (*orderapp.OrderView, error)
	ChangeStatus(ctx context.Context, req *orderapp.ChangeStatusRequest) (*orderapp.ChangeStatusResponse, error)
}

// AdminHandler gRPC管理サービスハンドラー
type AdminHandler struct {
	gateway gatewayapp.PaymentGateway
	orders  OrderService
	logger  *otelinfra.Logger
}

var _ AdminServiceServer = (*AdminHandler)(nil)

// NewAdminHandler 新しいAdminHandlerを作成
func NewAdminHandler(gw gatewayapp.PaymentGateway, orders OrderService, logger *otelinfra.Logger) *AdminHandler {
	return &AdminHandler{
		gateway: gw,
		orders:  orders,
		logger:  logger,
	}
}

// ProcessRefund 一部返金
func (h *AdminHandler) ProcessRefund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := orderIDField(req)
	if err != nil {
		return nil, err
	}

	amount, ok := numberField(req, "amount")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "amount is required")
	}

	resp, err := h.gateway.ProcessRefund(ctx, orderID, amount, stringField(req, "reason"))
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return h.toStruct(ctx, map[string]interface{}{
		"order_id":   resp.OrderID,
		"payment_id": resp.PaymentID,
		"amount":     resp.Amount,
		"refunded":   resp.Refunded,
	})
}

// ChangeOrderStatus 注文ステータス変更
func (h *AdminHandler) ChangeOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := orderIDField(req)
	if err != nil {
		return nil, err
	}

	to := stringField(req, "status")
	if to == "" {
		return nil, status.Error(codes.InvalidArgument, "status is required")
	}

	resp, err := h.orders.ChangeStatus(ctx, &orderapp.ChangeStatusRequest{
		OrderID: orderID,
		Status:  to,
		Note:    stringField(req, "note"),
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return h.toStruct(ctx, map[string]interface{}{
		"order_id": resp.OrderID,
		"from":     resp.From,
		"to":       resp.To,
		"changed":  resp.Changed,
	})
}

// GetOrder 注文取得
func (h *AdminHandler) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := orderIDField(req)
	if err != nil {
		return nil, err
	}

	view, err := h.orders.GetOrder(ctx, &orderapp.GetOrderRequest{OrderID: orderID})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	items := make([]interface{}, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, map[string]interface{}{
			"name":     item.Name,
			"quantity": item.Quantity,
		})
	}

	return h.toStruct(ctx, map[string]interface{}{
		"order_id":       view.OrderID,
		"order_number":   view.OrderNumber,
		"status":         view.Status,
		"currency":       view.Currency,
		"total":          view.Total,
		"payment_method": view.PaymentMethod,
		"items":          items,
		"created_at":     view.CreatedAt.Format(time.RFC3339),
		"updated_at":     view.UpdatedAt.Format(time.RFC3339),
	})
}

// GetGateway ゲートウェイ情報取得
func (h *AdminHandler) GetGateway(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	info := h.gateway.Info()

	return h.toStruct(ctx, map[string]interface{}{
		"id":          info.ID,
		"title":       info.Title,
		"description": info.Description,
		"enabled":     info.Enabled,
		"available":   info.Available,
		"test_mode":   info.TestMode,
		"supports":    stringList(info.Supports),
		"warnings":    stringList(info.Warnings),
	})
}

func (h *AdminHandler) toStruct(ctx context.Context, fields map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		h.logger.Error(ctx, "Failed to build response", err, nil)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return s, nil
}

// handleError エラーをgRPCステータスコードに変換
func (h *AdminHandler) handleError(ctx context.Context, err error) error {
	var fullErr *gateway.FullRefundError
	if errors.As(err, &fullErr) {
		return status.Error(codes.Aborted, fullErr.Err.Error())
	}

	var refundErr *gateway.RefundError
	if errors.As(err, &refundErr) {
		return status.Error(codes.FailedPrecondition, refundErr.Error())
	}

	if errors.Is(err, order.ErrOrderNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}

	if errors.Is(err, order.ErrInvalidOrderStatus) || errors.Is(err, gateway.ErrInvalidRefundAmount) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	if errors.Is(err, order.ErrOrderLocked) {
		return status.Error(codes.Aborted, err.Error())
	}

	if errors.Is(err, gateway.ErrOrderNotHandled) || errors.Is(err, payment_session.ErrPaymentIDNotFound) {
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	if errors.Is(err, gateway.ErrGatewayUnavailable) {
		return status.Error(codes.Unavailable, err.Error())
	}

	h.logger.Error(ctx, "Unexpected error", err, nil)
	return status.Error(codes.Internal, "internal server error")
}

// orderIDField order_idフィールドを正の整数として取得
func orderIDField(req *structpb.Struct) (int64, error) {
	v, ok := numberField(req, "order_id")
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "order_id is required")
	}
	if v <= 0 || v != math.Trunc(v) || v > math.MaxInt64 {
		return 0, status.Error(codes.InvalidArgument, "invalid order_id")
	}
	return int64(v), nil
}

func numberField(req *structpb.Struct, key string) (float64, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return n.NumberValue, true
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func stringList(values []string) []interface{} {
	list := make([]interface{}, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return list
}
