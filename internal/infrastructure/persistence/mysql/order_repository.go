package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/domain/order"
)

// OrderRepository MySQL実装のOrderRepository
type OrderRepository struct {
	db     *DB
	tm     *TransactionManager
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

var _ order.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository 新しいOrderRepositoryを作成
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{
		db:     db,
		tm:     NewTransactionManager(db),
		tracer: otel.Tracer("mysql.order_repository"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// FindByID 注文IDで注文を取得
func (r *OrderRepository) FindByID(ctx context.Context, orderID int64) (*order.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.FindByID",
		trace.WithAttributes(attribute.Int64("order_id", orderID)))
	defer span.End()

	query := `
		SELECT order_id, order_number, order_key, currency, total, payment_method,
			billing_email, status, created_at, updated_at
		FROM orders
		WHERE order_id = ?
	`

	var id int64
	var orderNumber, orderKey, currency, paymentMethod, email, st string
	var total float64
	var createdAt, updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&id, &orderNumber, &orderKey, &currency, &total, &paymentMethod,
		&email, &st, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to find order")
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	status, err := order.NewOrderStatus(st)
	if err != nil {
		return nil, fmt.Errorf("invalid order status in database: %w", err)
	}

	items, err := r.findItems(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to find order items")
		return nil, err
	}

	o := order.NewOrder(id, orderNumber, currency, total, paymentMethod, email, status, items)
	o.SetOrderKey(orderKey)
	o.SetTimestamps(createdAt, updatedAt)
	return o, nil
}

func (r *OrderRepository) findItems(ctx context.Context, orderID int64) ([]order.LineItem, error) {
	query := `
		SELECT item_id, product_id, name, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY item_id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer rows.Close()

	var items []order.LineItem
	for rows.Next() {
		var item order.LineItem
		if err := rows.Scan(&item.ItemID, &item.ProductID, &item.Name, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return items, nil
}

// UpdateStatus ステータスを更新し、注文メモを追加
// 更新とメモ追加は同一トランザクションで行う
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.OrderStatus, note string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("order_id", orderID),
			attribute.String("status", status.String()),
		))
	defer span.End()

	err := r.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		now := r.now()
		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
			status.String(), now, orderID,
		)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return order.ErrOrderNotFound
		}
		if note == "" {
			return nil
		}
		return r.insertNote(ctx, tx, orderID, note, now)
	})
	if err != nil && !errors.Is(err, order.ErrOrderNotFound) {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to update order status")
	}
	return err
}

// AddNote 注文メモを追加
func (r *OrderRepository) AddNote(ctx context.Context, orderID int64, note string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.AddNote",
		trace.WithAttributes(attribute.Int64("order_id", orderID)))
	defer span.End()

	if err := r.insertNote(ctx, r.db, orderID, note, r.now()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to add order note")
		return err
	}
	return nil
}

// execer *sql.DB と *sql.Tx の共通部分
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *OrderRepository) insertNote(ctx context.Context, ex execer, orderID int64, note string, createdAt time.Time) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO order_notes (note_id, order_id, note, created_at) VALUES (?, ?, ?, ?)`,
		r.newID(), orderID, note, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}
	return nil
}

// RestockItems 明細ID→数量で指定された商品の在庫を戻す
// 在庫管理していない商品は対象外
func (r *OrderRepository) RestockItems(ctx context.Context, o *order.Order, quantities map[int64]int) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.RestockItems",
		trace.WithAttributes(attribute.Int64("order_id", o.OrderID())))
	defer span.End()

	err := r.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, item := range o.Items() {
			qty := quantities[item.ItemID]
			if qty <= 0 || item.ProductID == 0 {
				continue
			}
			_, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = COALESCE(stock_quantity, 0) + ? WHERE product_id = ? AND manage_stock = 1`,
				qty, item.ProductID,
			)
			if err != nil {
				return fmt.Errorf("failed to restock product %d: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to restock items")
	}
	return err
}
