package checkout

import (
	"context"
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

// CheckoutApplicationService 決済開始アプリケーションサービス
type CheckoutApplicationService struct {
	orderRepo    order.OrderRepository
	sessionRepo  payment_session.PaymentSessionRepository
	tokenService *service.TokenService
	locker       order.Locker
	client       gateway.Client
	urls         *URLBuilder
	logger       *otelinfra.Logger
	gatewayLog   *otelinfra.GatewayLogger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
}

// NewCheckoutApplicationService 新しいCheckoutApplicationServiceを作成
func NewCheckoutApplicationService(
	orderRepo order.OrderRepository,
	sessionRepo payment_session.PaymentSessionRepository,
	tokenService *service.TokenService,
	locker order.Locker,
	client gateway.Client,
	urls *URLBuilder,
	logger *otelinfra.Logger,
	gatewayLog *otelinfra.GatewayLogger,
	metrics *otelinfra.Metrics,
) *CheckoutApplicationService {
	return &CheckoutApplicationService{
		orderRepo:    orderRepo,
		sessionRepo:  sessionRepo,
		tokenService: tokenService,
		locker:       locker,
		client:       client,
		urls:         urls,
		logger:       logger,
		gatewayLog:   gatewayLog,
		metrics:      metrics,
		tracer:       otel.Tracer("checkout-service"),
	}
}

// StartPayment 決済セッションを発行し、決済ページのURLを取得する
// セッションは外部APIを呼ぶ前に保存する（保存前に呼ぶと通知時にトークンを再計算できない）。
// 支払い待ちでない注文のセッションは上書きしない。
func (s *CheckoutApplicationService) StartPayment(ctx context.Context, req *StartPaymentRequest) (*StartPaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.StartPayment")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", req.OrderID))

	unlock, err := s.locker.Lock(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	defer unlock()

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
	if !o.PaidWith(gateway.GatewayID) {
		span.SetStatus(otelcodes.Error, gateway.ErrOrderNotHandled.Error())
		return nil, gateway.ErrOrderNotHandled
	}
	if !o.Status().AwaitingPayment() {
		s.logger.Warn(ctx, "Payment start refused", map[string]interface{}{
			"order_id": o.OrderID(),
			"status":   o.Status().String(),
		})
		span.SetStatus(otelcodes.Error, order.ErrOrderNotPayable.Error())
		return nil, fmt.Errorf("%w: status %s", order.ErrOrderNotPayable, o.Status())
	}

	session, err := payment_session.NewPaymentSession(o.OrderID(), o.OrderNumber())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save payment session: %w", err)
	}

	token, err := s.tokenService.GenerateToken(ctx, o.OrderID(), o.Currency())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	returnURL := s.urls.ReturnURL(o)
	linkReq := &gateway.PaymentLinkRequest{
		Reference:   session.TransactionID(),
		PaymentType: gateway.PaymentTypeDB,
		Currency:    o.Currency(),
		Amount:      o.Total(),
		CartItems:   cartItems(o),
		CancelURL:   s.urls.CancelURL(),
		ReturnURL:   returnURL,
		ResponseURL: gateway.WithToken(returnURL, token),
	}
	s.gatewayLog.Log(ctx, "get_payment_url - body", map[string]interface{}{
		"body": linkReq.Redacted(),
	})

	resp, err := s.client.CreatePaymentLink(ctx, linkReq)
	if err != nil {
		s.metrics.RecordPaymentLink(ctx, o.Currency(), "error")
		s.metrics.RecordError(ctx, "payment_request_error")
		s.logger.Error(ctx, "Payment link request failed", err, map[string]interface{}{
			"order_id": o.OrderID(),
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", gateway.ErrPaymentRequest, err)
	}
	s.gatewayLog.Log(ctx, "get_payment_url - results", map[string]interface{}{
		"status_code": resp.StatusCode,
		"result":      resp.Result,
		"error_field": resp.ErrorField,
		"message":     resp.Message,
	})

	switch {
	case resp.StatusCode == 200 && resp.Result == gateway.LinkResultSuccess && resp.LongURL != "":
		s.metrics.RecordPaymentLink(ctx, o.Currency(), "success")
		s.logger.Info(ctx, "Payment link created", map[string]interface{}{
			"order_id":       o.OrderID(),
			"transaction_id": session.TransactionID(),
		})
		return &StartPaymentResponse{
			Result:   "success",
			Redirect: resp.LongURL,
		}, nil
	case resp.StatusCode == 422 && resp.ErrorField == gateway.ErrorFieldCurrency:
		s.metrics.RecordPaymentLink(ctx, o.Currency(), "unsupported_currency")
		span.SetStatus(otelcodes.Error, gateway.ErrUnsupportedCurrency.Error())
		return nil, gateway.ErrUnsupportedCurrency
	default:
		s.metrics.RecordPaymentLink(ctx, o.Currency(), "rejected")
		s.metrics.RecordError(ctx, "payment_request_error")
		s.logger.Warn(ctx, "Payment link request rejected", map[string]interface{}{
			"order_id":    o.OrderID(),
			"status_code": resp.StatusCode,
			"message":     resp.Message,
		})
		span.SetStatus(otelcodes.Error, gateway.ErrPaymentRequest.Error())
		return nil, fmt.Errorf("%w: status %d", gateway.ErrPaymentRequest, resp.StatusCode)
	}
}

// cartItems 注文明細を名前と数量だけの一覧に変換
func cartItems(o *order.Order) []gateway.CartItem {
	items := make([]gateway.CartItem, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, gateway.CartItem{
			Name: item.Name,
			Qty:  item.Quantity,
		})
	}
	return items
}
