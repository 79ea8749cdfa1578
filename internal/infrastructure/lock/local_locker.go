package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"mobipaid-gateway/internal/domain/order"
)

// LocalLocker プロセス内の注文単位ロック（Redis無効時に使用）
type LocalLocker struct {
	mu        sync.Mutex
	locks     map[int64]chan struct{}
	waitLimit time.Duration
}

var _ order.Locker = (*LocalLocker)(nil)

// NewLocalLocker 新しいLocalLockerを作成
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		locks:     make(map[int64]chan struct{}),
		waitLimit: defaultWaitLimit,
	}
}

// Lock 注文のロックを取得するまで待機し、解放関数を返す
//
// waitLimitを超えて取得できない場合はErrOrderLockedを返す。
func (l *LocalLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	timer := time.NewTimer(l.waitLimit)
	defer timer.Stop()

	for {
		l.mu.Lock()
		held, ok := l.locks[orderID]
		if !ok {
			ch := make(chan struct{})
			l.locks[orderID] = ch
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, orderID)
					l.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, order.ErrOrderLocked
			}
			return nil, ctx.Err()
		case <-timer.C:
			return nil, order.ErrOrderLocked
		case <-held:
		}
	}
}
