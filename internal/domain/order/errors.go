package order

import "errors"

var (
	// ErrOrderNotFound 注文が見つからないエラー
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidOrderStatus 無効な注文ステータスエラー
	ErrInvalidOrderStatus = errors.New("invalid order status")
	// ErrOrderLocked 注文が他のリクエストで更新中のエラー
	ErrOrderLocked = errors.New("order is locked by another request")
	// ErrOrderNotPayable 決済を開始できないステータスの注文
	ErrOrderNotPayable = errors.New("order is not awaiting payment")
	// ErrInvalidOrderKey 注文キーが一致しない
	ErrInvalidOrderKey = errors.New("invalid order key")
)
