package gateway

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/application/checkout"
	orderapp "mobipaid-gateway/internal/application/order"
	"mobipaid-gateway/internal/application/refund"
	"mobipaid-gateway/internal/domain/gateway"
	"mobipaid-gateway/internal/domain/order"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// WarningEmptyAccessKey アクセスキー未設定時の管理画面向け警告
const WarningEmptyAccessKey = "Please enter an access key!"

// PaymentGateway 決済ゲートウェイが提供する機能
type PaymentGateway interface {
	// ID ゲートウェイ識別子
	ID() string

	// IsAvailable チェックアウトで選択可能か
	IsAvailable() bool

	// Supports 対応機能かどうか
	Supports(feature string) bool

	// ProcessPayment 注文キーを確認して決済を開始し、リダイレクト先を返す
	ProcessPayment(ctx context.Context, orderID int64, orderKey string) (*ProcessPaymentResponse, error)

	// ProcessRefund 注文を指定額返金する
	ProcessRefund(ctx context.Context, orderID int64, amount float64, reason string) (*ProcessRefundResponse, error)

	// Info 公開情報
	Info() *GatewayInfo
}

// PaymentStarter 決済開始ユースケース
type PaymentStarter interface {
	StartPayment(ctx context.Context, req *checkout.StartPaymentRequest) (*checkout.StartPaymentResponse, error)
}

// Refunder 返金ユースケース
type Refunder interface {
	ProcessRefund(ctx context.Context, req *refund.ProcessRefundRequest) (*refund.ProcessRefundResponse, error)
	ProcessFullRefund(ctx context.Context, o *order.Order, to order.OrderStatus) error
	AnnotateIfOverpaid(ctx context.Context, o *order.Order, from, to order.OrderStatus)
}

// MobipaidGateway Mobipaid決済ゲートウェイ
type MobipaidGateway struct {
	settings gateway.Settings
	checkout PaymentStarter
	refunder Refunder
	logger   *otelinfra.Logger
	tracer   trace.Tracer
}

var _ PaymentGateway = (*MobipaidGateway)(nil)

// NewMobipaidGateway 新しいMobipaidGatewayを作成
func NewMobipaidGateway(settings gateway.Settings, starter PaymentStarter, refunder Refunder, logger *otelinfra.Logger) *MobipaidGateway {
	return &MobipaidGateway{
		settings: settings,
		checkout: starter,
		refunder: refunder,
		logger:   logger,
		tracer:   otel.Tracer("gateway-service"),
	}
}

// ID ゲートウェイ識別子を返す
func (g *MobipaidGateway) ID() string {
	return gateway.GatewayID
}

// Settings 設定を返す
func (g *MobipaidGateway) Settings() gateway.Settings {
	return g.settings
}

// IsAvailable 有効かつアクセスキーが設定されている場合のみ利用可能
func (g *MobipaidGateway) IsAvailable() bool {
	return g.settings.IsAvailable()
}

// Supports 対応機能かどうかを返す
func (g *MobipaidGateway) Supports(feature string) bool {
	switch feature {
	case FeatureProducts, FeatureRefunds:
		return true
	default:
		return false
	}
}

// Warnings 設定の警告を返す
func (g *MobipaidGateway) Warnings() []string {
	if g.settings.AccessKey == "" {
		return []string{WarningEmptyAccessKey}
	}
	return nil
}

// Info 公開情報を返す
func (g *MobipaidGateway) Info() *GatewayInfo {
	return &GatewayInfo{
		ID:          g.ID(),
		Title:       g.settings.Title,
		Description: g.settings.Description,
		Enabled:     g.settings.Enabled,
		Available:   g.IsAvailable(),
		TestMode:    g.settings.IsTestMode(),
		Supports:    []string{FeatureProducts, FeatureRefunds},
		Warnings:    g.Warnings(),
	}
}

// ProcessPayment 決済を開始する
func (g *MobipaidGateway) ProcessPayment(ctx context.Context, orderID int64, orderKey string) (*ProcessPaymentResponse, error) {
	ctx, span := g.tracer.Start(ctx, "MobipaidGateway.ProcessPayment")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	if !g.IsAvailable() {
		span.SetStatus(otelcodes.Error, gateway.ErrGatewayUnavailable.Error())
		return nil, gateway.ErrGatewayUnavailable
	}

	resp, err := g.checkout.StartPayment(ctx, &checkout.StartPaymentRequest{OrderID: orderID, OrderKey: orderKey})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	return &ProcessPaymentResponse{Result: resp.Result, Redirect: resp.Redirect}, nil
}

// ProcessRefund 指定額を返金する
func (g *MobipaidGateway) ProcessRefund(ctx context.Context, orderID int64, amount float64, reason string) (*ProcessRefundResponse, error) {
	ctx, span := g.tracer.Start(ctx, "MobipaidGateway.ProcessRefund")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	resp, err := g.refunder.ProcessRefund(ctx, &refund.ProcessRefundRequest{
		OrderID: orderID,
		Amount:  amount,
		Reason:  reason,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	return &ProcessRefundResponse{
		OrderID:   resp.OrderID,
		PaymentID: resp.PaymentID,
		Amount:    resp.Amount,
		Refunded:  resp.Refunded,
	}, nil
}

// RegisterHooks 注文ステータス変更フックを登録する
// 変更前: 全額返金（失敗時は変更を中断）、変更後: 過払いメモ
func (g *MobipaidGateway) RegisterHooks(dispatcher *orderapp.HookDispatcher) {
	dispatcher.OnStatusEdit(func(ctx context.Context, o *order.Order, to order.OrderStatus) error {
		return g.refunder.ProcessFullRefund(ctx, o, to)
	})
	dispatcher.OnStatusChanged(func(ctx context.Context, o *order.Order, from, to order.OrderStatus) error {
		g.refunder.AnnotateIfOverpaid(ctx, o, from, to)
		return nil
	})
	g.logger.Debug(context.Background(), "Gateway hooks registered", map[string]interface{}{
		"gateway": g.ID(),
	})
}
