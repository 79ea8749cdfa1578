package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/domain/payment_session"
)

const upsertMetaQuery = `
	INSERT INTO order_meta (order_id, meta_key, meta_value)
	VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE meta_value = VALUES(meta_value)
`

// PaymentSessionRepository 注文メタデータに決済セッションを保存するMySQL実装
type PaymentSessionRepository struct {
	db     *DB
	tm     *TransactionManager
	tracer trace.Tracer
}

var _ payment_session.PaymentSessionRepository = (*PaymentSessionRepository)(nil)

// NewPaymentSessionRepository 新しいPaymentSessionRepositoryを作成
func NewPaymentSessionRepository(db *DB) *PaymentSessionRepository {
	return &PaymentSessionRepository{
		db:     db,
		tm:     NewTransactionManager(db),
		tracer: otel.Tracer("mysql.payment_session_repository"),
	}
}

// Save トランザクションIDとシークレットキーをまとめて保存
func (r *PaymentSessionRepository) Save(ctx context.Context, session *payment_session.PaymentSession) error {
	ctx, span := r.tracer.Start(ctx, "PaymentSessionRepository.Save",
		trace.WithAttributes(attribute.Int64("order_id", session.OrderID())))
	defer span.End()

	err := r.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := upsertMeta(ctx, tx, session.OrderID(), payment_session.MetaKeyTransactionID, session.TransactionID()); err != nil {
			return err
		}
		return upsertMeta(ctx, tx, session.OrderID(), payment_session.MetaKeySecretKey, session.SecretKey())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to save payment session")
		return fmt.Errorf("failed to save payment session: %w", err)
	}
	return nil
}

// FindByOrderID 注文IDで決済セッションを取得
// 未発行の項目は空文字になる
func (r *PaymentSessionRepository) FindByOrderID(ctx context.Context, orderID int64) (*payment_session.PaymentSession, error) {
	ctx, span := r.tracer.Start(ctx, "PaymentSessionRepository.FindByOrderID",
		trace.WithAttributes(attribute.Int64("order_id", orderID)))
	defer span.End()

	query := `
		SELECT meta_key, meta_value
		FROM order_meta
		WHERE order_id = ? AND meta_key IN (?, ?)
	`

	rows, err := r.db.QueryContext(ctx, query, orderID,
		payment_session.MetaKeyTransactionID, payment_session.MetaKeySecretKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to find payment session")
		return nil, fmt.Errorf("failed to find payment session: %w", err)
	}
	defer rows.Close()

	var transactionID, secretKey string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan order meta: %w", err)
		}
		switch key {
		case payment_session.MetaKeyTransactionID:
			transactionID = value
		case payment_session.MetaKeySecretKey:
			secretKey = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order meta: %w", err)
	}

	return payment_session.RestorePaymentSession(orderID, transactionID, secretKey), nil
}

// SavePaymentResult 決済IDと決済結果フラグを保存
func (r *PaymentSessionRepository) SavePaymentResult(ctx context.Context, orderID int64, paymentID string, result payment_session.PaymentResult) error {
	ctx, span := r.tracer.Start(ctx, "PaymentSessionRepository.SavePaymentResult",
		trace.WithAttributes(
			attribute.Int64("order_id", orderID),
			attribute.String("payment_result", result.String()),
		))
	defer span.End()

	err := r.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		if paymentID != "" {
			if err := upsertMeta(ctx, tx, orderID, payment_session.MetaKeyPaymentID, paymentID); err != nil {
				return err
			}
		}
		return upsertMeta(ctx, tx, orderID, payment_session.MetaKeyPaymentResult, result.String())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to save payment result")
		return fmt.Errorf("failed to save payment result: %w", err)
	}
	return nil
}

// FindPaymentID 保存済みの決済IDを取得
func (r *PaymentSessionRepository) FindPaymentID(ctx context.Context, orderID int64) (string, error) {
	ctx, span := r.tracer.Start(ctx, "PaymentSessionRepository.FindPaymentID",
		trace.WithAttributes(attribute.Int64("order_id", orderID)))
	defer span.End()

	var paymentID string
	err := r.db.QueryRowContext(ctx,
		`SELECT meta_value FROM order_meta WHERE order_id = ? AND meta_key = ?`,
		orderID, payment_session.MetaKeyPaymentID,
	).Scan(&paymentID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && paymentID == "") {
		return "", payment_session.ErrPaymentIDNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to find payment id")
		return "", fmt.Errorf("failed to find payment id: %w", err)
	}
	return paymentID, nil
}

func upsertMeta(ctx context.Context, tx *sql.Tx, orderID int64, key, value string) error {
	if _, err := tx.ExecContext(ctx, upsertMetaQuery, orderID, key, value); err != nil {
		return fmt.Errorf("failed to upsert order meta %s: %w", key, err)
	}
	return nil
}
