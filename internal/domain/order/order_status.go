package order

import (
	"fmt"
)

// OrderStatus 注文ステータスを表す値オブジェクト
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // 支払い待ち
	OrderStatusProcessing OrderStatus = "processing" // 支払い済み・処理中
	OrderStatusCompleted  OrderStatus = "completed"  // 完了
	OrderStatusFailed     OrderStatus = "failed"     // 失敗
	OrderStatusRefunded   OrderStatus = "refunded"   // 返金済み
)

// NewOrderStatus 新しいOrderStatusを作成
func NewOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "pending", "processing", "completed", "failed", "refunded":
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidOrderStatus, s)
	}
}

// String 文字列表現を返す
func (s OrderStatus) String() string {
	return string(s)
}

// Valid 有効な注文ステータスかどうかを返す
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// IsPaid 入金済みとして扱うステータスかどうかを返す
func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusProcessing || s == OrderStatusCompleted
}

// AwaitingPayment 決済を開始できるステータス（未払いまたは前回の決済が失敗）かどうかを返す
func (s OrderStatus) AwaitingPayment() bool {
	return s == OrderStatusPending || s == OrderStatusFailed
}

// IsFullRefundTransition 全額返金を伴う遷移（processing/completed → refunded）かどうかを返す
func IsFullRefundTransition(from, to OrderStatus) bool {
	return from.IsPaid() && to == OrderStatusRefunded
}
