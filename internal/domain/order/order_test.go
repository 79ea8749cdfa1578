package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestOrder() *Order {
	return NewOrder(1001, "1001", "USD", 100.00, "mobipaid", "buyer@example.com", OrderStatusPending, []LineItem{
		{ItemID: 1, ProductID: 10, Name: "T-Shirt", Quantity: 2},
		{ItemID: 2, ProductID: 11, Name: "Mug", Quantity: 1},
	})
}

func TestNewOrder(t *testing.T) {
	o := newTestOrder()

	assert.Equal(t, int64(1001), o.OrderID())
	assert.Equal(t, "1001", o.OrderNumber())
	assert.Equal(t, "USD", o.Currency())
	assert.Equal(t, 100.00, o.Total())
	assert.Equal(t, "mobipaid", o.PaymentMethod())
	assert.Equal(t, "buyer@example.com", o.BillingEmail())
	assert.Equal(t, OrderStatusPending, o.Status())
	assert.Len(t, o.Items(), 2)
	assert.WithinDuration(t, time.Now(), o.CreatedAt(), time.Second)
}

func TestNewOrder_DefaultOrderNumber(t *testing.T) {
	o := NewOrder(42, "", "JPY", 500, "mobipaid", "", OrderStatusPending, nil)
	assert.Equal(t, "42", o.OrderNumber())
}

func TestOrder_PaidWith(t *testing.T) {
	o := newTestOrder()
	assert.True(t, o.PaidWith("mobipaid"))
	assert.False(t, o.PaidWith("stripe"))
}

func TestOrder_ChangeStatus(t *testing.T) {
	o := newTestOrder()

	assert.True(t, o.ChangeStatus(OrderStatusProcessing))
	assert.Equal(t, OrderStatusProcessing, o.Status())

	// 同一ステータスへの変更は何もしない
	assert.False(t, o.ChangeStatus(OrderStatusProcessing))
	assert.Equal(t, OrderStatusProcessing, o.Status())
}

func TestOrder_RestockQuantities(t *testing.T) {
	o := newTestOrder()
	assert.Equal(t, map[int64]int{1: 2, 2: 1}, o.RestockQuantities())
}

func TestOrder_MatchesKey(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		given  string
		want   bool
	}{
		{name: "正常系: 一致", stored: "wc_order_abc123", given: "wc_order_abc123", want: true},
		{name: "異常系: 不一致", stored: "wc_order_abc123", given: "wc_order_xyz789", want: false},
		{name: "異常系: キー未指定", stored: "wc_order_abc123", given: "", want: false},
		{name: "異常系: 注文キー未設定", stored: "", given: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder()
			o.SetOrderKey(tt.stored)
			assert.Equal(t, tt.want, o.MatchesKey(tt.given))
		})
	}
}
