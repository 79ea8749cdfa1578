package payment_session

import "errors"

var (
	// ErrSessionNotIssued 決済セッションが発行されていないエラー
	ErrSessionNotIssued = errors.New("payment session not issued")
	// ErrPaymentIDNotFound 決済IDが保存されていないエラー
	ErrPaymentIDNotFound = errors.New("payment id not found")
)
