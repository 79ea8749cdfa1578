package payment_session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// 注文メタデータのキー
const (
	MetaKeyTransactionID = "_mobipaid_transaction_id"
	MetaKeySecretKey     = "_mobipaid_secret_key"
	MetaKeyPaymentID     = "_mobipaid_payment_id"
	MetaKeyPaymentResult = "_mobipaid_payment_result"
)

// TransactionIDPrefix トランザクションIDの接頭辞
const TransactionIDPrefix = "wc-"

// secretKeyBytes シークレットキーのバイト長（40桁の16進数）
const secretKeyBytes = 20

// PaymentSession 決済セッションエンティティ
type PaymentSession struct {
	orderID       int64
	transactionID string
	secretKey     string
}

// NewPaymentSession 注文番号から新しい決済セッションを作成
// シークレットキーは毎回ランダムに生成される
func NewPaymentSession(orderID int64, orderNumber string) (*PaymentSession, error) {
	secretKey, err := generateSecretKey()
	if err != nil {
		return nil, err
	}
	return &PaymentSession{
		orderID:       orderID,
		transactionID: NewTransactionID(orderNumber),
		secretKey:     secretKey,
	}, nil
}

// RestorePaymentSession 保存済みの値から決済セッションを復元
func RestorePaymentSession(orderID int64, transactionID, secretKey string) *PaymentSession {
	return &PaymentSession{
		orderID:       orderID,
		transactionID: transactionID,
		secretKey:     secretKey,
	}
}

// NewTransactionID 注文番号からトランザクションIDを作成
func NewTransactionID(orderNumber string) string {
	return TransactionIDPrefix + orderNumber
}

// OrderID 注文IDを返す
func (s *PaymentSession) OrderID() int64 {
	return s.orderID
}

// TransactionID トランザクションIDを返す
func (s *PaymentSession) TransactionID() string {
	return s.transactionID
}

// SecretKey シークレットキーを返す
func (s *PaymentSession) SecretKey() string {
	return s.secretKey
}

// IsIssued トランザクションIDとシークレットキーが揃っているかを返す
func (s *PaymentSession) IsIssued() bool {
	return s != nil && s.transactionID != "" && s.secretKey != ""
}

func generateSecretKey() (string, error) {
	buf := make([]byte, secretKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
