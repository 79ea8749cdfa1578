package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 決済リンク作成数
	PaymentLinkCount metric.Int64Counter

	// Webhook受信数（結果別）
	WebhookCount metric.Int64Counter

	// トークン不一致（改ざん疑い）の発生件数
	TamperDetectedCount metric.Int64Counter

	// 返金数（全額/一部・結果別）
	RefundCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	paymentLinkCount, err := meter.Int64Counter(
		"payment_links_total",
		metric.WithDescription("Total number of payment link creation attempts"),
	)
	if err != nil {
		return nil, err
	}

	webhookCount, err := meter.Int64Counter(
		"webhooks_total",
		metric.WithDescription("Total number of payment notifications received"),
	)
	if err != nil {
		return nil, err
	}

	tamperDetectedCount, err := meter.Int64Counter(
		"tamper_detected_total",
		metric.WithDescription("Total number of notifications rejected by token mismatch"),
	)
	if err != nil {
		return nil, err
	}

	refundCount, err := meter.Int64Counter(
		"refunds_total",
		metric.WithDescription("Total number of refund attempts"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PaymentLinkCount:    paymentLinkCount,
		WebhookCount:        webhookCount,
		TamperDetectedCount: tamperDetectedCount,
		RefundCount:         refundCount,
		RequestCount:        requestCount,
		ResponseTime:        responseTime,
		ErrorCount:          errorCount,
	}, nil
}

// RecordPaymentLink 決済リンク作成を記録
func (m *Metrics) RecordPaymentLink(ctx context.Context, currency, outcome string) {
	m.PaymentLinkCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("currency", currency),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordWebhook Webhook受信を記録
func (m *Metrics) RecordWebhook(ctx context.Context, outcome string) {
	m.WebhookCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
		),
	)
}

// RecordTamperDetected トークン不一致を記録
func (m *Metrics) RecordTamperDetected(ctx context.Context) {
	m.TamperDetectedCount.Add(ctx, 1)
}

// RecordRefund 返金を記録
func (m *Metrics) RecordRefund(ctx context.Context, kind, outcome string) {
	m.RefundCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
