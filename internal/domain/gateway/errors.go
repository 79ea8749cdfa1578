package gateway

import (
	"errors"
	"fmt"
)

// 利用者向けメッセージ
const (
	MessageUnsupportedCurrency = "We are sorry, currency is not supported. Please contact us."
	MessagePaymentRequest      = "Error while Processing Request: please try again."
)

var (
	// ErrUnsupportedCurrency 通貨非対応エラー
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	// ErrPaymentRequest 決済リクエスト失敗エラー
	ErrPaymentRequest = errors.New("payment request failed")
	// ErrTamperDetected トークン不一致（改ざん）エラー
	ErrTamperDetected = errors.New("token is not same with the generated token")
	// ErrRefundFailed 返金失敗エラー
	ErrRefundFailed = errors.New("refund failed")
	// ErrGatewayUnavailable ゲートウェイ利用不可エラー
	ErrGatewayUnavailable = errors.New("payment gateway is not available")
	// ErrOrderNotHandled このゲートウェイで支払われていない注文
	ErrOrderNotHandled = errors.New("order is not paid with this gateway")
	// ErrInvalidRefundAmount 不正な返金額
	ErrInvalidRefundAmount = errors.New("invalid refund amount")
)

// RefundError 決済APIから返された返金失敗
type RefundError struct {
	Code    int
	Message string
}

// Error エラーメッセージを返す
func (e *RefundError) Error() string {
	return "Refund Failed: " + e.Message
}

// Is ErrRefundFailedとして判定可能にする
func (e *RefundError) Is(target error) bool {
	return target == ErrRefundFailed
}

// FullRefundError ステータス変更時の全額返金失敗
// リクエストを中断すべき致命的エラーとして扱う
type FullRefundError struct {
	OrderID int64
	Err     *RefundError
}

// Error エラーメッセージを返す
func (e *FullRefundError) Error() string {
	return fmt.Sprintf("full refund for order %d failed: %s", e.OrderID, e.Err.Error())
}

// Unwrap 元の返金エラーを返す
func (e *FullRefundError) Unwrap() error {
	return e.Err
}
