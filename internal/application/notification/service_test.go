package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"mobipaid-gateway/internal/domain/order"
	"mobipaid-gateway/internal/domain/payment_session"
	"mobipaid-gateway/internal/domain/service"
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

// MockPaymentSessionRepository モック決済セッションリポジトリ
type MockPaymentSessionRepository struct {
	mock.Mock
}

func (m *MockPaymentSessionRepository) Save(ctx context.Context, session *payment_session.PaymentSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockPaymentSessionRepository) FindByOrderID(ctx context.Context, orderID int64) (*payment_session.PaymentSession, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment_session.PaymentSession), args.Error(1)
}

func (m *MockPaymentSessionRepository) SavePaymentResult(ctx context.Context, orderID int64, paymentID string, result payment_session.PaymentResult) error {
	args := m.Called(ctx, orderID, paymentID, result)
	return args.Error(0)
}

func (m *MockPaymentSessionRepository) FindPaymentID(ctx context.Context, orderID int64) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
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

const (
	testSecret = "abc123"
	testTxID   = "wc-1001"
)

func validToken() string {
	return service.DeriveToken(1001, "USD", testTxID, testSecret)
}

func webhookBody(t *testing.T, result string) []byte {
	t.Helper()
	inner, err := json.Marshal(map[string]string{
		"transaction_id": testTxID,
		"result":         result,
		"payment_id":     "pay_777",
		"currency":       "USD",
	})
	require.NoError(t, err)
	body, err := json.Marshal(map[string]string{"response": string(inner)})
	require.NoError(t, err)
	return body
}

func newOrder(paymentMethod string, status order.OrderStatus) *order.Order {
	return order.NewOrder(1001, "1001", "USD", 100.00, paymentMethod, "buyer@example.com", status, nil)
}

func newTestService(t *testing.T, orderRepo *MockOrderRepository, sessionRepo *MockPaymentSessionRepository, locker order.Locker) *NotificationApplicationService {
	t.Helper()
	logger := otelinfra.NewLogger(otel.Tracer("test"))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	return NewNotificationApplicationService(
		orderRepo,
		sessionRepo,
		service.NewTokenService(sessionRepo),
		locker,
		logger,
		otelinfra.NewGatewayLogger(logger, true),
		metrics,
	)
}

func TestNotificationApplicationService_HandleWebhook(t *testing.T) {
	issued := payment_session.RestorePaymentSession(1001, testTxID, testSecret)

	tests := []struct {
		name        string
		token       string
		result      string
		order       *order.Order
		findErr     error
		session     *payment_session.PaymentSession
		setupMocks  func(*MockOrderRepository, *MockPaymentSessionRepository)
		wantHandled bool
		wantOutcome string
		wantLocked  bool
		wantStatus  order.OrderStatus
	}{
		{
			name:        "正常系: ACKで処理中に遷移し決済IDを保存",
			token:       validToken(),
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusPending),
			session:     issued,
			wantHandled: true,
			wantOutcome: OutcomeACK,
			wantLocked:  true,
			setupMocks: func(or *MockOrderRepository, sr *MockPaymentSessionRepository) {
				sr.On("SavePaymentResult", mock.Anything, int64(1001), "pay_777", payment_session.PaymentResultSuccess).Return(nil).Once()
				or.On("UpdateStatus", mock.Anything, int64(1001), order.OrderStatusProcessing, "Mobipaid payment successfull:").Return(nil).Once()
			},
		},
		{
			name:        "正常系: ACK以外は失敗に遷移",
			token:       validToken(),
			result:      "NOK",
			order:       newOrder("mobipaid", order.OrderStatusPending),
			session:     issued,
			wantHandled: true,
			wantOutcome: OutcomeFailed,
			wantLocked:  true,
			setupMocks: func(or *MockOrderRepository, sr *MockPaymentSessionRepository) {
				sr.On("SavePaymentResult", mock.Anything, int64(1001), "", payment_session.PaymentResultFailed).Return(nil).Once()
				or.On("UpdateStatus", mock.Anything, int64(1001), order.OrderStatusFailed, "Mobipaid payment failed:").Return(nil).Once()
			},
		},
		{
			name:        "正常系: 再送されたACKはステータス更新しない",
			token:       validToken(),
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusProcessing),
			session:     issued,
			wantHandled: true,
			wantOutcome: OutcomeACK,
			wantLocked:  true,
			setupMocks: func(or *MockOrderRepository, sr *MockPaymentSessionRepository) {
				sr.On("SavePaymentResult", mock.Anything, int64(1001), "pay_777", payment_session.PaymentResultSuccess).Return(nil).Once()
			},
		},
		{
			name:        "正常系: 完了済みの注文に再送されたACKは処理中へ戻さない",
			token:       validToken(),
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusCompleted),
			session:     issued,
			wantHandled: true,
			wantOutcome: OutcomeACK,
			wantLocked:  true,
			wantStatus:  order.OrderStatusCompleted,
			setupMocks: func(or *MockOrderRepository, sr *MockPaymentSessionRepository) {
				sr.On("SavePaymentResult", mock.Anything, int64(1001), "pay_777", payment_session.PaymentResultSuccess).Return(nil).Once()
			},
		},
		{
			name:        "正常系: 返金済みの注文に再送されたACKは処理中へ戻さない",
			token:       validToken(),
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusRefunded),
			session:     issued,
			wantHandled: true,
			wantOutcome: OutcomeACK,
			wantLocked:  true,
			wantStatus:  order.OrderStatusRefunded,
			setupMocks: func(or *MockOrderRepository, sr *MockPaymentSessionRepository) {
				sr.On("SavePaymentResult", mock.Anything, int64(1001), "pay_777", payment_session.PaymentResultSuccess).Return(nil).Once()
			},
		},
		{
			name:        "正常系: 失敗した注文へのACKは処理中に遷移",
			token:       validToken(),
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusFailed),
			session:     issued,
			wantHandled: true,
			wantOutcome: OutcomeACK,
			wantLocked:  true,
			wantStatus:  order.OrderStatusProcessing,
			setupMocks: func(or *MockOrderRepository, sr *MockPaymentSessionRepository) {
				sr.On("SavePaymentResult", mock.Anything, int64(1001), "pay_777", payment_session.PaymentResultSuccess).Return(nil).Once()
				or.On("UpdateStatus", mock.Anything, int64(1001), order.OrderStatusProcessing, "Mobipaid payment successfull:").Return(nil).Once()
			},
		},
		{
			name:        "正常系: トークンなしは完了ページへの遷移",
			token:       "",
			result:      "ACK",
			wantHandled: false,
			wantOutcome: OutcomePassThrough,
		},
		{
			name:        "異常系: トークン不一致は状態を変更しない",
			token:       "0123456789abcdef0123456789abcdef",
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusPending),
			session:     issued,
			wantHandled: false,
			wantOutcome: OutcomeTampered,
			wantLocked:  true,
		},
		{
			name:        "異常系: セッション未発行のトークンは検証できない",
			token:       service.DeriveToken(1001, "USD", "", ""),
			result:      "ACK",
			order:       newOrder("mobipaid", order.OrderStatusPending),
			session:     payment_session.RestorePaymentSession(1001, "", ""),
			wantHandled: false,
			wantOutcome: OutcomeTampered,
			wantLocked:  true,
		},
		{
			name:        "正常系: 他の支払い方法の注文は無視",
			token:       validToken(),
			result:      "ACK",
			order:       newOrder("cod", order.OrderStatusPending),
			session:     issued,
			wantHandled: false,
			wantOutcome: OutcomeIgnored,
			wantLocked:  true,
		},
		{
			name:        "正常系: 存在しない注文は無視",
			token:       validToken(),
			result:      "ACK",
			findErr:     order.ErrOrderNotFound,
			session:     issued,
			wantHandled: false,
			wantOutcome: OutcomeIgnored,
			wantLocked:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			sessionRepo := new(MockPaymentSessionRepository)
			locker := &fakeLocker{}

			if tt.findErr != nil {
				orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(nil, tt.findErr)
			} else if tt.order != nil {
				orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(tt.order, nil)
			}
			if tt.session != nil {
				sessionRepo.On("FindByOrderID", mock.Anything, int64(1001)).Return(tt.session, nil)
			}
			if tt.setupMocks != nil {
				tt.setupMocks(orderRepo, sessionRepo)
			}

			svc := newTestService(t, orderRepo, sessionRepo, locker)
			resp, err := svc.HandleWebhook(context.Background(), &HandleWebhookRequest{
				OrderID: 1001,
				Token:   tt.token,
				Body:    webhookBody(t, tt.result),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantHandled, resp.Handled)
			assert.Equal(t, tt.wantOutcome, resp.Outcome)
			if tt.wantLocked {
				assert.Equal(t, 1, locker.locked)
				assert.Equal(t, 1, locker.unlocked)
			} else {
				assert.Equal(t, 0, locker.locked)
			}

			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, tt.order.Status())
			}
			orderRepo.AssertExpectations(t)
			sessionRepo.AssertExpectations(t)
			if !tt.wantHandled {
				orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				sessionRepo.AssertNotCalled(t, "SavePaymentResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestNotificationApplicationService_HandleWebhook_TamperedIgnoresClaimedResult(t *testing.T) {
	for _, result := range []string{"ACK", "NOK", ""} {
		t.Run("result="+result, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			sessionRepo := new(MockPaymentSessionRepository)
			o := newOrder("mobipaid", order.OrderStatusPending)

			orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(o, nil)
			sessionRepo.On("FindByOrderID", mock.Anything, int64(1001)).
				Return(payment_session.RestorePaymentSession(1001, testTxID, "rotated-secret"), nil)

			svc := newTestService(t, orderRepo, sessionRepo, &fakeLocker{})
			resp, err := svc.HandleWebhook(context.Background(), &HandleWebhookRequest{
				OrderID: 1001,
				Token:   validToken(),
				Body:    webhookBody(t, result),
			})

			require.NoError(t, err)
			assert.False(t, resp.Handled)
			assert.Equal(t, order.OrderStatusPending, o.Status())
			orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestNotificationApplicationService_HandleWebhook_Errors(t *testing.T) {
	t.Run("異常系: ロック取得失敗", func(t *testing.T) {
		svc := newTestService(t, new(MockOrderRepository), new(MockPaymentSessionRepository), &fakeLocker{err: order.ErrOrderLocked})

		_, err := svc.HandleWebhook(context.Background(), &HandleWebhookRequest{
			OrderID: 1001,
			Token:   validToken(),
			Body:    webhookBody(t, "ACK"),
		})
		assert.ErrorIs(t, err, order.ErrOrderLocked)
	})

	t.Run("異常系: ステータス更新失敗", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		sessionRepo := new(MockPaymentSessionRepository)

		orderRepo.On("FindByID", mock.Anything, int64(1001)).Return(newOrder("mobipaid", order.OrderStatusPending), nil)
		sessionRepo.On("FindByOrderID", mock.Anything, int64(1001)).
			Return(payment_session.RestorePaymentSession(1001, testTxID, testSecret), nil)
		sessionRepo.On("SavePaymentResult", mock.Anything, int64(1001), "pay_777", payment_session.PaymentResultSuccess).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, int64(1001), order.OrderStatusProcessing, mock.Anything).Return(errors.New("db down"))

		svc := newTestService(t, orderRepo, sessionRepo, &fakeLocker{})
		_, err := svc.HandleWebhook(context.Background(), &HandleWebhookRequest{
			OrderID: 1001,
			Token:   validToken(),
			Body:    webhookBody(t, "ACK"),
		})
		assert.ErrorContains(t, err, "failed to update order status")
	})
}
