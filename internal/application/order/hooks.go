package order

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"mobipaid-gateway/internal/domain/order"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)

// StatusEditHook ステータス変更の直前に呼ばれるフック
// エラーを返すと変更は中断される。oのステータスは変更前のまま
type StatusEditHook func(ctx context.Context, o *order.Order, to order.OrderStatus) error

// StatusChangedHook ステータス変更の確定後に呼ばれるフック
type StatusChangedHook func(ctx context.Context, o *order.Order, from, to order.OrderStatus) error

// HookDispatcher 注文ステータス変更フックの登録と呼び出し
type HookDispatcher struct {
	mu      sync.RWMutex
	edit    []StatusEditHook
	changed []StatusChangedHook
	logger  *otelinfra.Logger
}

// NewHookDispatcher 新しいHookDispatcherを作成
func NewHookDispatcher(logger *otelinfra.Logger) *HookDispatcher {
	return &HookDispatcher{logger: logger}
}

// OnStatusEdit 変更前フックを登録
func (d *HookDispatcher) OnStatusEdit(hook StatusEditHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.edit = append(d.edit, hook)
}

// OnStatusChanged 変更後フックを登録
func (d *HookDispatcher) OnStatusChanged(hook StatusChangedHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changed = append(d.changed, hook)
}

// RunStatusEdit 登録順に変更前フックを呼び、最初のエラーで止める
func (d *HookDispatcher) RunStatusEdit(ctx context.Context, o *order.Order, to order.OrderStatus) error {
	d.mu.RLock()
	hooks := append([]StatusEditHook(nil), d.edit...)
	d.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, o, to); err != nil {
			return err
		}
	}
	return nil
}

// RunStatusChanged 変更後フックを全て呼ぶ
// 変更は確定済みのため、フックのエラーはログに残すだけ
func (d *HookDispatcher) RunStatusChanged(ctx context.Context, o *order.Order, from, to order.OrderStatus) {
	d.mu.RLock()
	hooks := append([]StatusChangedHook(nil), d.changed...)
	d.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, o, from, to); err != nil {
			trace.SpanFromContext(ctx).RecordError(err)
			d.logger.Error(ctx, "Status changed hook failed", err, map[string]interface{}{
				"order_id": o.OrderID(),
				"from":     from.String(),
				"to":       to.String(),
			})
		}
	}
}
