package handler

import (
	"time"

	orderapp "mobipaid-gateway/internal/application/order"
)

// WebhookResponse 確定しなかった通知の処理結果
// @Description 通知処理結果
type WebhookResponse struct {
	Handled bool   `json:"handled" example:"false"`
	Outcome string `json:"outcome" example:"tampered"`
}

// OrderItemResponse 注文明細
// @Description 注文明細
type OrderItemResponse struct {
	Name     string `json:"name" example:"Mug"`
	Quantity int    `json:"quantity" example:"2"`
}

// OrderViewResponse 注文
// @Description 注文の表示用データ
type OrderViewResponse struct {
	OrderID       int64               `json:"order_id" example:"1001"`
	OrderNumber   string              `json:"order_number" example:"1001"`
	Status        string              `json:"status" example:"processing"`
	Currency      string              `json:"currency" example:"USD"`
	Total         float64             `json:"total" example:"100.00"`
	PaymentMethod string              `json:"payment_method" example:"mobipaid"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newOrderViewResponse(view *orderapp.OrderView) OrderViewResponse {
	items := make([]OrderItemResponse, len(view.Items))
	for i, item := range view.Items {
		items[i] = OrderItemResponse{Name: item.Name, Quantity: item.Quantity}
	}
	return OrderViewResponse{
		OrderID:       view.OrderID,
		OrderNumber:   view.OrderNumber,
		Status:        view.Status,
		Currency:      view.Currency,
		Total:         view.Total,
		PaymentMethod: view.PaymentMethod,
		Items:         items,
		CreatedAt:     view.CreatedAt,
		UpdatedAt:     view.UpdatedAt,
	}
}
