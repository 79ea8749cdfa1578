package gateway

import (
	"context"
)

// CartItem 決済リンクに含める商品（名前と数量のみ）
type CartItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// PaymentLinkRequest 決済リンク作成リクエスト
type PaymentLinkRequest struct {
	Reference   string     `json:"reference"`
	PaymentType string     `json:"payment_type"`
	Currency    string     `json:"currency"`
	Amount      float64    `json:"amount"`
	CartItems   []CartItem `json:"cart_items"`
	CancelURL   string     `json:"cancel_url"`
	ReturnURL   string     `json:"return_url"`
	ResponseURL string     `json:"response_url"`
}

// Redacted レスポンスURLのトークンを伏せたコピーを返す
func (r PaymentLinkRequest) Redacted() PaymentLinkRequest {
	r.ResponseURL = RedactToken(r.ResponseURL)
	return r
}

// PaymentLinkResponse 決済リンク作成レスポンス
type PaymentLinkResponse struct {
	StatusCode int    `json:"-"`
	Result     string `json:"result"`
	LongURL    string `json:"long_url"`
	ErrorField string `json:"error_field"`
	Message    string `json:"message"`
}

// RefundRequest 返金リクエスト
type RefundRequest struct {
	Email  string  `json:"email"`
	Amount float64 `json:"amount"`
}

// RefundResponse 返金レスポンス
type RefundResponse struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// Succeeded 返金が成功したかどうかを返す
func (r *RefundResponse) Succeeded() bool {
	return r != nil && r.StatusCode == 200 && r.Status == RefundStatusRefund
}

// PaymentRecord 決済記録
type PaymentRecord struct {
	StatusCode int     `json:"-"`
	Amount     float64 `json:"amount"`
}

// Client 決済APIクライアントインターフェース
type Client interface {
	// CreatePaymentLink 決済リンクを作成
	CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (*PaymentLinkResponse, error)

	// Refund 決済IDに対して返金を実行
	Refund(ctx context.Context, paymentID string, req *RefundRequest) (*RefundResponse, error)

	// GetPayment 決済IDで決済記録を取得
	GetPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
}
