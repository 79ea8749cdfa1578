package payment_session

import (
	"context"
)

// PaymentSessionRepository 決済セッションリポジトリインターフェース
type PaymentSessionRepository interface {
	// Save トランザクションIDとシークレットキーをまとめて保存
	Save(ctx context.Context, session *PaymentSession) error

	// FindByOrderID 注文IDで決済セッションを取得
	// 未発行の場合は空の値を持つセッションを返す
	FindByOrderID(ctx context.Context, orderID int64) (*PaymentSession, error)

	// SavePaymentResult 決済IDと決済結果フラグを保存
	// paymentIDが空の場合は結果フラグのみ保存する
	SavePaymentResult(ctx context.Context, orderID int64, paymentID string, result PaymentResult) error

	// FindPaymentID 保存済みの決済IDを取得
	FindPaymentID(ctx context.Context, orderID int64) (string, error)
}
