package order

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/domain/order"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// OrderApplicationService 注文アプリケーションサービス
type OrderApplicationService struct {
	orderRepo  order.OrderRepository
	locker     order.Locker
	dispatcher *HookDispatcher
	logger     *otelinfra.Logger
	tracer     trace.Tracer
}

// NewOrderApplicationService 新しいOrderApplicationServiceを作成
func NewOrderApplicationService(
	orderRepo order.OrderRepository,
	locker order.Locker,
	dispatcher *HookDispatcher,
	logger *otelinfra.Logger,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo:  orderRepo,
		locker:     locker,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("order-service"),
	}
}

// GetOrder 注文を取得
func (s *OrderApplicationService) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderApplicationService.GetOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", req.OrderID))

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return newOrderView(o), nil
}

// GetReceivedOrder 注文キーを照合して完了ページ用の注文を取得
func (s *OrderApplicationService) GetReceivedOrder(ctx context.Context, req *GetReceivedOrderRequest) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderApplicationService.GetReceivedOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", req.OrderID))

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if !o.MatchesKey(req.OrderKey) {
		span.SetStatus(otelcodes.Error, order.ErrInvalidOrderKey.Error())
		return nil, order.ErrInvalidOrderKey
	}
	return newOrderView(o), nil
}

// ChangeStatus 注文ステータスを変更する（管理操作）
//
// 変更前フックがエラーを返した場合はステータスを変更せずにそのエラーを返す。
func (s *OrderApplicationService) ChangeStatus(ctx context.Context, req *ChangeStatusRequest) (*ChangeStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "OrderApplicationService.ChangeStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", req.OrderID),
		attribute.String("status_to", req.Status),
	)

	to, err := order.NewOrderStatus(req.Status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	defer unlock()

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	from := o.Status()
	resp := &ChangeStatusResponse{OrderID: o.OrderID(), From: from.String(), To: to.String()}
	if from == to {
		return resp, nil
	}

	if err := s.dispatcher.RunStatusEdit(ctx, o, to); err != nil {
		s.logger.Warn(ctx, "Status change aborted", map[string]interface{}{
			"order_id": o.OrderID(),
			"from":     from.String(),
			"to":       to.String(),
			"error":    err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, o.OrderID(), to, req.Note); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	o.ChangeStatus(to)

	s.dispatcher.RunStatusChanged(ctx, o, from, to)

	s.logger.Info(ctx, "Order status changed", map[string]interface{}{
		"order_id": o.OrderID(),
		"from":     from.String(),
		"to":       to.String(),
	})
	resp.Changed = true
	return resp, nil
}
