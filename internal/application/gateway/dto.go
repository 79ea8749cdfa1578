package gateway

// 対応機能
const (
	FeatureProducts = "products"
	FeatureRefunds  = "refunds"
)

// ProcessPaymentResponse 決済開始結果（result: "success", redirect: 決済ページURL）
type ProcessPaymentResponse struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect"`
}

// ProcessRefundResponse 返金結果
type ProcessRefundResponse struct {
	OrderID   int64   `json:"order_id"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Refunded  bool    `json:"refunded"`
}

// GatewayInfo ゲートウェイの公開情報
type GatewayInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
	Available   bool     `json:"available"`
	TestMode    bool     `json:"test_mode"`
	Supports    []string `json:"supports"`
	Warnings    []string `json:"warnings,omitempty"`
}
