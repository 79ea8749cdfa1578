package order

import (
	"crypto/subtle"
	"strconv"
	"time"
)

// KeyQueryParam 購入者向けURLで注文キーを渡すクエリパラメータ名
const KeyQueryParam = "key"

// LineItem 注文明細
type LineItem struct {
	ItemID    int64
	ProductID int64
	Name      string
	Quantity  int
}

// Order 注文エンティティ
//
// 注文の所有者はショップ側であり、ゲートウェイはステータスとメタデータのみを更新する。
type Order struct {
	orderID       int64
	orderNumber   string
	orderKey      string
	currency      string
	total         float64
	paymentMethod string
	billingEmail  string
	status        OrderStatus
	items         []LineItem
	createdAt     time.Time
	updatedAt     time.Time
}

// NewOrder 新しいOrderエンティティを作成
func NewOrder(
	orderID int64,
	orderNumber string,
	currency string,
	total float64,
	paymentMethod string,
	billingEmail string,
	status OrderStatus,
	items []LineItem,
) *Order {
	if orderNumber == "" {
		orderNumber = strconv.FormatInt(orderID, 10)
	}
	now := time.Now()
	return &Order{
		orderID:       orderID,
		orderNumber:   orderNumber,
		currency:      currency,
		total:         total,
		paymentMethod: paymentMethod,
		billingEmail:  billingEmail,
		status:        status,
		items:         items,
		createdAt:     now,
		updatedAt:     now,
	}
}

// OrderID 注文IDを返す
func (o *Order) OrderID() int64 {
	return o.orderID
}

// OrderNumber 注文番号を返す
func (o *Order) OrderNumber() string {
	return o.orderNumber
}

// Currency 通貨コードを返す
func (o *Order) Currency() string {
	return o.currency
}

// Total 注文合計金額を返す
func (o *Order) Total() float64 {
	return o.total
}

// PaymentMethod 支払い方法のタグを返す
func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

// BillingEmail 請求先メールアドレスを返す
func (o *Order) BillingEmail() string {
	return o.billingEmail
}

// Status ステータスを返す
func (o *Order) Status() OrderStatus {
	return o.status
}

// Items 注文明細を返す
func (o *Order) Items() []LineItem {
	return o.items
}

// CreatedAt 作成日時を返す
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt 更新日時を返す
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// OrderKey 注文キー（購入者向けURLに含める推測困難な値）を返す
func (o *Order) OrderKey() string {
	return o.orderKey
}

// SetOrderKey 永続化層から読み込んだ注文キーを設定
func (o *Order) SetOrderKey(key string) {
	o.orderKey = key
}

// MatchesKey 注文キーが一致するか。キー未設定の注文は常に不一致
func (o *Order) MatchesKey(key string) bool {
	if o.orderKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(o.orderKey), []byte(key)) == 1
}

// SetTimestamps 永続化層から読み込んだ日時を設定
func (o *Order) SetTimestamps(createdAt, updatedAt time.Time) {
	o.createdAt = createdAt
	o.updatedAt = updatedAt
}

// PaidWith 指定されたゲートウェイで支払われた注文かどうかを返す
func (o *Order) PaidWith(gatewayID string) bool {
	return o.paymentMethod == gatewayID
}

// ChangeStatus ステータスを変更する
// 同じステータスへの変更は何もしない（falseを返す）
func (o *Order) ChangeStatus(status OrderStatus) bool {
	if o.status == status {
		return false
	}
	o.status = status
	o.updatedAt = time.Now()
	return true
}

// RestockQuantities 全明細を元の数量で在庫に戻すための数量マップを返す
func (o *Order) RestockQuantities() map[int64]int {
	quantities := make(map[int64]int, len(o.items))
	for _, item := range o.items {
		quantities[item.ItemID] = item.Quantity
	}
	return quantities
}
