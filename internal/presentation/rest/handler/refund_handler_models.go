package handler

// ProcessRefundRequest 返金リクエスト
// @Description 返金リクエスト
type ProcessRefundRequest struct {
	Amount float64 `json:"amount" example:"25.50"`
	Reason string  `json:"reason" example:"damaged item"`
}

// ProcessRefundResponse 返金レスポンス
// @Description 返金レスポンス
type ProcessRefundResponse struct {
	OrderID   int64   `json:"order_id" example:"1001"`
	PaymentID string  `json:"payment_id" example:"pay_777"`
	Amount    float64 `json:"amount" example:"25.50"`
	Refunded  bool    `json:"refunded" example:"true"`
}
