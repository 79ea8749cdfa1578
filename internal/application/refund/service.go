package refund

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/domain/gateway"
	"mobipaid-gateway/internal/domain/order"
	"mobipaid-gateway/internal/domain/payment_session"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// RefundApplicationService 返金アプリケーションサービス
type RefundApplicationService struct {
	orderRepo   order.OrderRepository
	sessionRepo payment_session.PaymentSessionRepository
	client      gateway.Client
	logger      *otelinfra.Logger
	gatewayLog  *otelinfra.GatewayLogger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer
}

// NewRefundApplicationService 新しいRefundApplicationServiceを作成
func NewRefundApplicationService(
	orderRepo order.OrderRepository,
	sessionRepo payment_session.PaymentSessionRepository,
	client gateway.Client,
	logger *otelinfra.Logger,
	gatewayLog *otelinfra.GatewayLogger,
	metrics *otelinfra.Metrics,
) *RefundApplicationService {
	return &RefundApplicationService{
		orderRepo:   orderRepo,
		sessionRepo: sessionRepo,
		client:      client,
		logger:      logger,
		gatewayLog:  gatewayLog,
		metrics:     metrics,
		tracer:      otel.Tracer("refund-service"),
	}
}

// ProcessRefund 指定額を返金する
// 失敗時は外部APIのステータスコードとメッセージを持つ*gateway.RefundErrorを返す
func (s *RefundApplicationService) ProcessRefund(ctx context.Context, req *ProcessRefundRequest) (*ProcessRefundResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RefundApplicationService.ProcessRefund")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", req.OrderID),
		attribute.Float64("amount", req.Amount),
	)

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if !o.PaidWith(gateway.GatewayID) {
		span.SetStatus(otelcodes.Error, gateway.ErrOrderNotHandled.Error())
		return nil, gateway.ErrOrderNotHandled
	}
	if req.Amount <= 0 || req.Amount > o.Total() {
		err := fmt.Errorf("%w: %.2f", gateway.ErrInvalidRefundAmount, req.Amount)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	paymentID, err := s.refund(ctx, o, req.Amount, "process_refund")
	if err != nil {
		s.metrics.RecordRefund(ctx, kindPartial, "failed")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.orderRepo.AddNote(ctx, o.OrderID(), gateway.NotePartialRefundDone); err != nil {
		// 返金自体は完了しているため、メモの失敗で結果を覆さない
		s.logger.Error(ctx, "Failed to add refund note", err, map[string]interface{}{
			"order_id": o.OrderID(),
		})
	}
	s.metrics.RecordRefund(ctx, kindPartial, "success")
	s.logger.Info(ctx, "Partial refund completed", map[string]interface{}{
		"order_id":   o.OrderID(),
		"payment_id": paymentID,
		"amount":     req.Amount,
		"reason":     req.Reason,
	})

	return &ProcessRefundResponse{
		OrderID:   o.OrderID(),
		PaymentID: paymentID,
		Amount:    req.Amount,
		Refunded:  true,
	}, nil
}

// ProcessFullRefund 処理中/完了→返金済みへの変更時に注文総額を返金する
// ステータス変更前に呼ばれ、失敗時は*gateway.FullRefundErrorを返して変更を中断させる
func (s *RefundApplicationService) ProcessFullRefund(ctx context.Context, o *order.Order, to order.OrderStatus) error {
	if !o.PaidWith(gateway.GatewayID) || !order.IsFullRefundTransition(o.Status(), to) {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "RefundApplicationService.ProcessFullRefund")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", o.OrderID()),
		attribute.String("status_from", o.Status().String()),
		attribute.String("status_to", to.String()),
	)

	paymentID, err := s.refund(ctx, o, o.Total(), "process_full_refund")
	if err != nil {
		s.metrics.RecordRefund(ctx, kindFull, "failed")
		var refundErr *gateway.RefundError
		if !errors.As(err, &refundErr) {
			refundErr = &gateway.RefundError{Message: err.Error()}
		}
		fullErr := &gateway.FullRefundError{OrderID: o.OrderID(), Err: refundErr}
		s.logger.Error(ctx, "Full refund failed", fullErr, map[string]interface{}{
			"order_id": o.OrderID(),
		})
		span.RecordError(fullErr)
		span.SetStatus(otelcodes.Error, fullErr.Error())
		return fullErr
	}

	if err := s.orderRepo.RestockItems(ctx, o, o.RestockQuantities()); err != nil {
		s.logger.Error(ctx, "Failed to restock refunded items", err, map[string]interface{}{
			"order_id": o.OrderID(),
		})
		span.RecordError(err)
	}
	if err := s.orderRepo.AddNote(ctx, o.OrderID(), gateway.NoteFullRefundDone); err != nil {
		s.logger.Error(ctx, "Failed to add refund note", err, map[string]interface{}{
			"order_id": o.OrderID(),
		})
	}

	s.metrics.RecordRefund(ctx, kindFull, "success")
	s.logger.Info(ctx, "Full refund completed", map[string]interface{}{
		"order_id":   o.OrderID(),
		"payment_id": paymentID,
		"amount":     o.Total(),
	})
	return nil
}

// AnnotateIfOverpaid 外部APIの決済額が注文総額を上回る場合にメモを追加する
// ステータスは変更せず、失敗してもエラーにはしない
func (s *RefundApplicationService) AnnotateIfOverpaid(ctx context.Context, o *order.Order, from, to order.OrderStatus) {
	if !o.PaidWith(gateway.GatewayID) || !order.IsFullRefundTransition(from, to) {
		return
	}

	ctx, span := s.tracer.Start(ctx, "RefundApplicationService.AnnotateIfOverpaid")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", o.OrderID()))

	paymentID, err := s.sessionRepo.FindPaymentID(ctx, o.OrderID())
	if err != nil {
		s.logger.Warn(ctx, "Skip overpaid check", map[string]interface{}{
			"order_id": o.OrderID(),
			"error":    err.Error(),
		})
		return
	}

	record, err := s.client.GetPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error(ctx, "Failed to get payment", err, map[string]interface{}{
			"order_id":   o.OrderID(),
			"payment_id": paymentID,
		})
		span.RecordError(err)
		return
	}
	s.gatewayLog.Log(ctx, "add_full_refund_notes - get_payment results", map[string]interface{}{
		"status_code": record.StatusCode,
		"amount":      record.Amount,
	})
	if record.StatusCode != 200 || record.Amount <= o.Total() {
		return
	}

	if err := s.orderRepo.AddNote(ctx, o.OrderID(), gateway.NoteOverpaid); err != nil {
		s.logger.Error(ctx, "Failed to add overpaid note", err, map[string]interface{}{
			"order_id": o.OrderID(),
		})
		return
	}
	span.AddEvent("overpaid_note_added")
}

// refund 保存済みの決済IDに対して返金を実行し、決済IDを返す
func (s *RefundApplicationService) refund(ctx context.Context, o *order.Order, amount float64, op string) (string, error) {
	paymentID, err := s.sessionRepo.FindPaymentID(ctx, o.OrderID())
	if err != nil {
		return "", fmt.Errorf("failed to find payment id: %w", err)
	}

	body := &gateway.RefundRequest{
		Email:  o.BillingEmail(),
		Amount: amount,
	}
	s.gatewayLog.Log(ctx, op+" - request body", map[string]interface{}{
		"email":  body.Email,
		"amount": body.Amount,
	})

	resp, err := s.client.Refund(ctx, paymentID, body)
	if err != nil {
		s.gatewayLog.Log(ctx, op+": Failed", map[string]interface{}{"error": err.Error()})
		return paymentID, &gateway.RefundError{Message: err.Error()}
	}
	s.gatewayLog.Log(ctx, op+" - results", map[string]interface{}{
		"status_code": resp.StatusCode,
		"status":      resp.Status,
		"message":     resp.Message,
	})

	if !resp.Succeeded() {
		s.gatewayLog.Log(ctx, op+": Failed", nil)
		return paymentID, &gateway.RefundError{Code: resp.StatusCode, Message: resp.Message}
	}
	s.gatewayLog.Log(ctx, op+": Success", nil)
	return paymentID, nil
}
