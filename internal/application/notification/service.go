package notification

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
	"mobipaid-gateway/internal/domain/service"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// NotificationApplicationService 決済結果通知の検証と注文状態の反映
type NotificationApplicationService struct {
	orderRepo    order.OrderRepository
	sessionRepo  payment_session.PaymentSessionRepository
	tokenService *service.TokenService
	locker       order.Locker
	logger       *otelinfra.Logger
	gatewayLog   *otelinfra.GatewayLogger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
}

// NewNotificationApplicationService 新しいNotificationApplicationServiceを作成
func NewNotificationApplicationService(
	orderRepo order.OrderRepository,
	sessionRepo payment_session.PaymentSessionRepository,
	tokenService *service.TokenService,
	locker order.Locker,
	logger *otelinfra.Logger,
	gatewayLog *otelinfra.GatewayLogger,
	metrics *otelinfra.Metrics,
) *NotificationApplicationService {
	return &NotificationApplicationService{
		orderRepo:    orderRepo,
		sessionRepo:  sessionRepo,
		tokenService: tokenService,
		locker:       locker,
		logger:       logger,
		gatewayLog:   gatewayLog,
		metrics:      metrics,
		tracer:       otel.Tracer("notification-service"),
	}
}

// HandleWebhook 通知を検証し、注文ステータスを更新する
//
// トークンが空の場合は通知ではなく完了ページへの遷移として何もしない。
// トークンが一致しない通知は記録のみ行い、注文には一切触れない。
func (s *NotificationApplicationService) HandleWebhook(ctx context.Context, req *HandleWebhookRequest) (*HandleWebhookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "NotificationApplicationService.HandleWebhook")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", req.OrderID))

	if req.Token == "" {
		s.gatewayLog.Log(ctx, "response_page: go to thank you page", nil)
		return &HandleWebhookResponse{Outcome: OutcomePassThrough}, nil
	}

	s.gatewayLog.Log(ctx, "get response from the gateway reponse url", nil)
	outcome := gateway.ParseNotification(req.Body)
	s.gatewayLog.Log(ctx, "response_page - response", map[string]interface{}{
		"transaction_id": outcome.TransactionID,
		"result":         outcome.Result,
		"payment_id":     outcome.PaymentID,
		"currency":       outcome.Currency,
	})

	unlock, err := s.locker.Lock(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	defer unlock()

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if errors.Is(err, order.ErrOrderNotFound) {
		s.metrics.RecordWebhook(ctx, OutcomeIgnored)
		return &HandleWebhookResponse{Outcome: OutcomeIgnored}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if !o.PaidWith(gateway.GatewayID) {
		s.metrics.RecordWebhook(ctx, OutcomeIgnored)
		return &HandleWebhookResponse{Outcome: OutcomeIgnored}, nil
	}

	verified, err := s.tokenService.VerifyToken(ctx, o.OrderID(), outcome.Currency, req.Token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !verified {
		s.metrics.RecordWebhook(ctx, OutcomeTampered)
		s.metrics.RecordTamperDetected(ctx)
		s.logger.Warn(ctx, "Payment notification rejected", map[string]interface{}{
			"order_id":       o.OrderID(),
			"transaction_id": outcome.TransactionID,
			"reason":         gateway.ErrTamperDetected.Error(),
		})
		s.gatewayLog.Log(ctx, "response_page: FRAUD detected, "+gateway.ErrTamperDetected.Error(), nil)
		span.AddEvent("tamper_detected")
		return &HandleWebhookResponse{Outcome: OutcomeTampered}, nil
	}

	if outcome.IsACK() {
		s.gatewayLog.Log(ctx, "response_page: update order status to processing", nil)
		if err := s.sessionRepo.SavePaymentResult(ctx, o.OrderID(), outcome.PaymentID, payment_session.PaymentResultSuccess); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to save payment result: %w", err)
		}
		// 入金確定後に進んだステータス（completed/refunded）は再送で処理中へ戻さない
		if o.Status().AwaitingPayment() {
			if err := s.transition(ctx, o, order.OrderStatusProcessing, gateway.NotePaymentSuccess); err != nil {
				span.RecordError(err)
				span.SetStatus(otelcodes.Error, err.Error())
				return nil, err
			}
		} else if o.Status() != order.OrderStatusProcessing {
			s.logger.Info(ctx, "Payment notification for settled order, status kept", map[string]interface{}{
				"order_id": o.OrderID(),
				"status":   o.Status().String(),
			})
		}
		s.metrics.RecordWebhook(ctx, OutcomeACK)
		s.logger.Info(ctx, "Payment confirmed", map[string]interface{}{
			"order_id":   o.OrderID(),
			"payment_id": outcome.PaymentID,
		})
		return &HandleWebhookResponse{Handled: true, Outcome: OutcomeACK}, nil
	}

	s.gatewayLog.Log(ctx, "response_page: update order status to failed", nil)
	if err := s.sessionRepo.SavePaymentResult(ctx, o.OrderID(), "", payment_session.PaymentResultFailed); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save payment result: %w", err)
	}
	if err := s.transition(ctx, o, order.OrderStatusFailed, gateway.NotePaymentFailed); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	s.metrics.RecordWebhook(ctx, OutcomeFailed)
	s.logger.Info(ctx, "Payment failed", map[string]interface{}{
		"order_id": o.OrderID(),
		"result":   outcome.Result,
	})
	return &HandleWebhookResponse{Handled: true, Outcome: OutcomeFailed}, nil
}

// transition 同じステータスへの再遷移（再送された通知）は何もしない
func (s *NotificationApplicationService) transition(ctx context.Context, o *order.Order, status order.OrderStatus, note string) error {
	if !o.ChangeStatus(status) {
		return nil
	}
	if err := s.orderRepo.UpdateStatus(ctx, o.OrderID(), status, note); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}
