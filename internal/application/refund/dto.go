package refund

// ProcessRefundRequest 一部返金リクエスト
type ProcessRefundRequest struct {
	OrderID int64
	Amount  float64
	Reason  string
}

// ProcessRefundResponse 一部返金レスポンス
type ProcessRefundResponse struct {
	OrderID   int64
	PaymentID string
	Amount    float64
	Refunded  bool
}

// 返金の種別（メトリクス用）
const (
	kindPartial = "partial"
	kindFull    = "full"
)
