package mobipaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/domain/gateway"
)

// maxResponseBody 読み込むレスポンス本文の上限
const maxResponseBody = 1 << 20

// ClientConfig 決済APIクライアントの設定
// 起動時に一度だけ組み立て、各処理へは参照で渡す
type ClientConfig struct {
	AccessKey  string
	LiveURL    string
	TestURL    string
	Timeout    time.Duration // 0の場合はタイムアウトなし
	HTTPClient *http.Client  // nilの場合はTimeoutから生成
}

// IsLive 本番モードかどうか
func (c *ClientConfig) IsLive() bool {
	return gateway.IsLiveKey(c.AccessKey)
}

// BaseURL アクセスキーに応じたAPIのベースURLを返す
func (c *ClientConfig) BaseURL() string {
	if c.IsLive() {
		return strings.TrimRight(c.LiveURL, "/")
	}
	return strings.TrimRight(c.TestURL, "/")
}

// Client 決済APIのHTTPクライアント
type Client struct {
	cfg        *ClientConfig
	httpClient *http.Client
	tracer     trace.Tracer
}

var _ gateway.Client = (*Client)(nil)

// NewClient 新しいClientを作成
func NewClient(cfg *ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tracer:     otel.Tracer("mobipaid.client"),
	}
}

// CreatePaymentLink 決済リンクを作成
func (c *Client) CreatePaymentLink(ctx context.Context, req *gateway.PaymentLinkRequest) (*gateway.PaymentLinkResponse, error) {
	var body struct {
		Result     string `json:"result"`
		LongURL    string `json:"long_url"`
		ErrorField string `json:"error_field"`
		Message    string `json:"message"`
	}
	status, err := c.do(ctx, "CreatePaymentLink", http.MethodPost, "/links", req, &body)
	if err != nil {
		return nil, err
	}
	return &gateway.PaymentLinkResponse{
		StatusCode: status,
		Result:     body.Result,
		LongURL:    body.LongURL,
		ErrorField: body.ErrorField,
		Message:    body.Message,
	}, nil
}

// Refund 決済IDに対して返金を実行
func (c *Client) Refund(ctx context.Context, paymentID string, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	status, err := c.do(ctx, "Refund", http.MethodPost, "/refund/"+url.PathEscape(paymentID), req, &body)
	if err != nil {
		return nil, err
	}
	return &gateway.RefundResponse{
		StatusCode: status,
		Status:     body.Status,
		Message:    body.Message,
	}, nil
}

// GetPayment 決済IDで決済記録を取得
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*gateway.PaymentRecord, error) {
	var body struct {
		Payment struct {
			Amount flexibleAmount `json:"amount"`
		} `json:"payment"`
	}
	status, err := c.do(ctx, "GetPayment", http.MethodGet, "/payment/"+url.PathEscape(paymentID), nil, &body)
	if err != nil {
		return nil, err
	}
	return &gateway.PaymentRecord{
		StatusCode: status,
		Amount:     float64(body.Payment.Amount),
	}, nil
}

// do リクエストを送信し、ステータスコードと（解析できた範囲の）本文を返す
// 本文がJSONでない場合もエラーにはせず、ステータスコードのみで判定できるようにする
func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}, out interface{}) (int, error) {
	ctx, span := c.tracer.Start(ctx, "mobipaid."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("mobipaid.path", path),
			attribute.Bool("mobipaid.live", c.cfg.IsLive()),
		),
	)
	defer span.End()

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "failed to marshal request")
			return 0, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL()+path, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to build request")
		return 0, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessKey)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "request failed")
		return 0, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to read response")
		return resp.StatusCode, fmt.Errorf("failed to read %s response: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) > 0 {
		// 解析できない本文は空の値として扱う
		_ = json.Unmarshal(data, out)
	}

	return resp.StatusCode, nil
}

// flexibleAmount 数値・文字列いずれの金額表現も受け付ける
type flexibleAmount float64

// UnmarshalJSON 金額を解析する（解析できない場合は0）
func (a *flexibleAmount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = flexibleAmount(v)
	return nil
}
