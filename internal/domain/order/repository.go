package order

import (
	"context"
)

// OrderRepository 注文リポジトリインターフェース
type OrderRepository interface {
	// FindByID 注文IDで注文を取得
	FindByID(ctx context.Context, orderID int64) (*Order, error)

	// UpdateStatus ステータスを更新し、注文メモを追加
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus, note string) error

	// AddNote 注文メモを追加
	AddNote(ctx context.Context, orderID int64, note string) error

	// RestockItems 明細ID→数量で指定された商品の在庫を戻す
	RestockItems(ctx context.Context, o *Order, quantities map[int64]int) error
}

// Locker 注文単位の排他制御インターフェース
type Locker interface {
	// Lock 注文のロックを取得し、解放関数を返す
	Lock(ctx context.Context, orderID int64) (unlock func(), err error)
}
