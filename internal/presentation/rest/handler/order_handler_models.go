package handler

// ChangeStatusRequest ステータス変更リクエスト
// @Description ステータス変更リクエスト
type ChangeStatusRequest struct {
	Status string `json:"status" example:"refunded"`
	Note   string `json:"note" example:"refunded by admin"`
}

// ChangeStatusResponse ステータス変更レスポンス
// @Description ステータス変更レスポンス
type ChangeStatusResponse struct {
	OrderID int64  `json:"order_id" example:"1001"`
	From    string `json:"from" example:"processing"`
	To      string `json:"to" example:"refunded"`
	Changed bool   `json:"changed" example:"true"`
}
