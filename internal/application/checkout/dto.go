package checkout

// StartPaymentRequest 決済開始リクエスト
type StartPaymentRequest struct {
	OrderID  int64
	OrderKey string
}

// StartPaymentResponse 決済開始レスポンス
type StartPaymentResponse struct {
	Result   string
	Redirect string
}
