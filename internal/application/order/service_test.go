package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"mobipaid-gateway/internal/domain/order"
	otelinfra "mobipaid-gateway/internal/infrastructure/observability/otel"
)


// MockOrderRepository モック注文リポジトリ
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.OrderStatus, note string) error {
	args := m.Called(ctx, orderID, status, note)
	return args.Error(0)
}

func (m *MockOrderRepository) AddNote(ctx context.Context, orderID int64, note string) error {
	args := m.Called(ctx, orderID, note)
	return args.Error(0)
}

func (m *MockOrderRepository) RestockItems(ctx context.Context, o *order.Order, quantities map[int64]int) error {
	args := m.Called(ctx, o, quantities)
	return args.Error(0)
}

// fakeLocker ロック取得回数を数えるだけのロック
type fakeLocker struct {
	locked   int
	unlocked int
	err      error
}

func (l *fakeLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked++
	return func() { l.unlocked++ }, nil
}

func newTestOrder(status order.OrderStatus) *order.Order {
	return order.NewOrder(1001, "1001", "USD", 100.00, "mobipaid", "buyer@example.com", status, []order.LineItem{
		{ItemID: 1, ProductID: 501, Name: "Mug", Quantity: 2},
	})
}

func TestOrderApplicationService_ChangeStatus(t *testing.T) {
	abort := errors.New("refund failed")

	tests := []struct {
		name             string
		request          *ChangeStatusRequest
		current          order.OrderStatus
		editErr          error
		setupMock        func(*MockOrderRepository)
		wantErr          error
		wantChanged      bool
		wantEditCalls    int
		wantChangedCalls int
	}{
		{
			name:    "正常系: ステータスを変更しフックを呼ぶ",
			request: &ChangeStatusRequest{OrderID: 1001, Status: "refunded", Note: "admin"},
			current: order.OrderStatusProcessing,
			setupMock: func(m *MockOrderRepository) {
				m.On("UpdateStatus", mock.Anything, int64(1001), order.OrderStatusRefunded, "admin").Return(nil)
			},
			wantChanged:      true,
			wantEditCalls:    1,
			wantChangedCalls: 1,
		},
		{
			name:             "正常系: 同じステータスなら何もしない",
			request:          &ChangeStatusRequest{OrderID: 1001, Status: "processing"},
			current:          order.OrderStatusProcessing,
			setupMock:        func(m *MockOrderRepository) {},
			wantChanged:      false,
			wantEditCalls:    0,
			wantChangedCalls: 0,
		},
		{
			name:          "異常系: 変更前フックのエラーで中断",
			request:       &ChangeStatusRequest{OrderID: 1001, Status: "refunded"},
			current:       order.OrderStatusProcessing,
			editErr:       abort,
			setupMock:     func(m *MockOrderRepository) {},
			wantErr:       abort,
			wantEditCalls: 1,
		},
		{
			name:    "異常系: 更新失敗",
			request: &ChangeStatusRequest{OrderID: 1001, Status: "completed"},
			current: order.OrderStatusProcessing,
			setupMock: func(m *MockOrderRepository) {
				m.On("UpdateStatus", mock.Anything, int64(1001), order.OrderStatusCompleted, "").Return(errors.New("db down"))
			},
			wantErr:       errors.New("db down"),
			wantEditCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(newTestOrder(tt.current), nil)
			tt.setupMock(orderRepo)

			logger := otelinfra.NewLogger(otel.Tracer("test"))
			dispatcher := NewHookDispatcher(logger)
			var editCalls, changedCalls int
			dispatcher.OnStatusEdit(func(ctx context.Context, o *order.Order, to order.OrderStatus) error {
				editCalls++
				assert.Equal(t, tt.current, o.Status())
				return tt.editErr
			})
			dispatcher.OnStatusChanged(func(ctx context.Context, o *order.Order, from, to order.OrderStatus) error {
				changedCalls++
				assert.Equal(t, tt.current, from)
				assert.Equal(t, to, o.Status())
				return nil
			})

			locker := &fakeLocker{}
			svc := NewOrderApplicationService(orderRepo, locker, dispatcher, logger)
			resp, err := svc.ChangeStatus(context.Background(), tt.request)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantChanged, resp.Changed)
				assert.Equal(t, tt.current.String(), resp.From)
				assert.Equal(t, tt.request.Status, resp.To)
			}
			if tt.wantErr == abort {
				orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			assert.Equal(t, tt.wantEditCalls, editCalls)
			assert.Equal(t, tt.wantChangedCalls, changedCalls)
			assert.Equal(t, 1, locker.locked)
			assert.Equal(t, 1, locker.unlocked)
			orderRepo.AssertExpectations(t)
		})
	}
}

func TestOrderApplicationService_ChangeStatus_InvalidStatus(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	locker := &fakeLocker{}
	logger := otelinfra.NewLogger(otel.Tracer("test"))
	svc := NewOrderApplicationService(orderRepo, locker, NewHookDispatcher(logger), logger)

	_, err := svc.ChangeStatus(context.Background(), &ChangeStatusRequest{OrderID: 1001, Status: "shipped"})

	assert.ErrorIs(t, err, order.ErrInvalidOrderStatus)
	assert.Equal(t, 0, locker.locked)
	orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestOrderApplicationService_ChangeStatus_Locked(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	logger := otelinfra.NewLogger(otel.Tracer("test"))
	svc := NewOrderApplicationService(orderRepo, &fakeLocker{err: order.ErrOrderLocked}, NewHookDispatcher(logger), logger)

	_, err := svc.ChangeStatus(context.Background(), &ChangeStatusRequest{OrderID: 1001, Status: "completed"})

	assert.ErrorIs(t, err, order.ErrOrderLocked)
	orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestOrderApplicationService_GetOrder(t *testing.T) {
	logger := otelinfra.NewLogger(otel.Tracer("test"))

	t.Run("正常系: 表示用データを返す", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(newTestOrder(order.OrderStatusProcessing), nil)
		svc := NewOrderApplicationService(orderRepo, &fakeLocker{}, NewHookDispatcher(logger), logger)

		view, err := svc.GetOrder(context.Background(), &GetOrderRequest{OrderID: 1001})

		require.NoError(t, err)
		assert.Equal(t, int64(1001), view.OrderID)
		assert.Equal(t, "processing", view.Status)
		assert.Equal(t, "mobipaid", view.PaymentMethod)
		assert.Equal(t, []OrderItemView{{Name: "Mug", Quantity: 2}}, view.Items)
	})

	t.Run("異常系: 注文が存在しない", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, int64(42)).Return(nil, order.ErrOrderNotFound)
		svc := NewOrderApplicationService(orderRepo, &fakeLocker{}, NewHookDispatcher(logger), logger)

		_, err := svc.GetOrder(context.Background(), &GetOrderRequest{OrderID: 42})

		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestOrderApplicationService_GetReceivedOrder(t *testing.T) {
	logger := otelinfra.NewLogger(otel.Tracer("test"))

	tests := []struct {
		name    string
		key     string
		findErr error
		wantErr error
	}{
		{
			name: "正常系: 注文キーが一致すれば表示用データを返す",
			key:  "wc_order_abc123",
		},
		{
			name:    "異常系: 注文キーなし",
			key:     "",
			wantErr: order.ErrInvalidOrderKey,
		},
		{
			name:    "異常系: 注文キー不一致",
			key:     "wc_order_other",
			wantErr: order.ErrInvalidOrderKey,
		},
		{
			name:    "異常系: 注文が存在しない",
			key:     "wc_order_abc123",
			findErr: order.ErrOrderNotFound,
			wantErr: order.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			if tt.findErr != nil {
				orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(nil, tt.findErr)
			} else {
				o := newTestOrder(order.OrderStatusProcessing)
				o.SetOrderKey("wc_order_abc123")
				orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(o, nil)
			}
			svc := NewOrderApplicationService(orderRepo, &fakeLocker{}, NewHookDispatcher(logger), logger)

			view, err := svc.GetReceivedOrder(context.Background(), &GetReceivedOrderRequest{OrderID: 1001, OrderKey: tt.key})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, view)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1001), view.OrderID)
		})
	}
}
