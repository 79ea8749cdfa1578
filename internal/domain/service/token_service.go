package service

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"

	"mobipaid-gateway/internal/domain/payment_session"
)

// TokenService 検証トークンのドメインサービス
//
// トークンは保存せず、注文ID・通貨・保存済みの決済セッションから都度導出する。
// 決済開始時と通知受信時で同じ値が得られるため、シークレットキーを外部に送らずに照合できる。
type TokenService struct {
	sessionRepo payment_session.PaymentSessionRepository
}

// NewTokenService 新しいTokenServiceを作成
func NewTokenService(sessionRepo payment_session.PaymentSessionRepository) *TokenService {
	return &TokenService{
		sessionRepo: sessionRepo,
	}
}

// GenerateToken 注文IDと通貨から検証トークンを生成
// 決済セッションが未発行でも失敗せず、照合できないトークンを返す
func (s *TokenService) GenerateToken(ctx context.Context, orderID int64, currency string) (string, error) {
	session, err := s.sessionRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to find payment session: %w", err)
	}
	if session == nil {
		session = payment_session.RestorePaymentSession(orderID, "", "")
	}
	return DeriveToken(orderID, currency, session.TransactionID(), session.SecretKey()), nil
}

// VerifyToken 受信したトークンが再計算したトークンと一致するか検証
// 決済セッションが未発行の場合は一致しないものとして扱う
func (s *TokenService) VerifyToken(ctx context.Context, orderID int64, currency, token string) (bool, error) {
	session, err := s.sessionRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to find payment session: %w", err)
	}
	if !session.IsIssued() || token == "" {
		return false, nil
	}
	expected := DeriveToken(orderID, currency, session.TransactionID(), session.SecretKey())
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1, nil
}

// DeriveToken md5(注文ID ‖ 通貨 ‖ トランザクションID ‖ シークレットキー) の16進表現
func DeriveToken(orderID int64, currency, transactionID, secretKey string) string {
	sum := md5.Sum([]byte(strconv.FormatInt(orderID, 10) + currency + transactionID + secretKey))
	return hex.EncodeToString(sum[:])
}
