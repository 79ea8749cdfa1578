package handler

// ProcessPaymentResponse 決済開始レスポンス
// @Description 決済開始レスポンス
type ProcessPaymentResponse struct {
	Result   string `json:"result" example:"success"`
	Redirect string `json:"redirect" example:"https://pay.mobipaid.io/l/abc123"`
}

// ErrorResponse エラーレスポンス（ドキュメント用）
// @Description エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error" example:"order_not_found"`
	Message string `json:"message" example:"order not found"`
	Code    int    `json:"code,omitempty" example:"402"`
}
