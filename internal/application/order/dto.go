package order

import (
	"time"

	"mobipaid-gateway/internal/domain/order"
)

// ChangeStatusRequest ステータス変更リクエスト
type ChangeStatusRequest struct {
	OrderID int64
	Status  string
	Note    string
}

// ChangeStatusResponse ステータス変更レスポンス
type ChangeStatusResponse struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Changed bool   `json:"changed"`
}

// GetOrderRequest 注文取得リクエスト
type GetOrderRequest struct {
	OrderID int64
}

// GetReceivedOrderRequest 完了ページ用の注文取得リクエスト
type GetReceivedOrderRequest struct {
	OrderID  int64
	OrderKey string
}

// OrderItemView 注文明細の表示用データ
type OrderItemView struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderView 注文の表示用データ（完了ページ）
type OrderView struct {
	OrderID       int64           `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Total         float64         `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItemView `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newOrderView(o *order.Order) *OrderView {
	items := make([]OrderItemView, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, OrderItemView{Name: item.Name, Quantity: item.Quantity})
	}
	return &OrderView{
		OrderID:       o.OrderID(),
		OrderNumber:   o.OrderNumber(),
		Status:        o.Status().String(),
		Currency:      o.Currency(),
		Total:         o.Total(),
		PaymentMethod: o.PaymentMethod(),
		Items:         items,
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}
