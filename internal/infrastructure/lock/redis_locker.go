package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mobipaid-gateway/internal/domain/order"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	keyPrefix         = "mobipaid:order-lock:"
	defaultRetryDelay = 50 * time.Millisecond
	defaultWaitLimit  = 10 * time.Second
)

// RedisLocker Redisによる注文単位の分散ロック
type RedisLocker struct {
	client     redis.UniversalClient
	script     *redis.Script
	ttl        time.Duration
	retryDelay time.Duration
	waitLimit  time.Duration
}

var _ order.Locker = (*RedisLocker)(nil)

// NewRedisLocker 新しいRedisLockerを作成
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client:     client,
		script:     redis.NewScript(lockReleaseScript),
		ttl:        ttl,
		retryDelay: defaultRetryDelay,
		waitLimit:  defaultWaitLimit,
	}
}

// NewRedisClient 接続確認済みのRedisクライアントを作成
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Lock 注文のロックを取得するまで待機し、解放関数を返す
// 待機上限を超えた場合はorder.ErrOrderLockedを返す
func (l *RedisLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	key := lockKey(orderID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.waitLimit)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire order lock: %w", err)
		}
		if ok {
			return func() {
				// 呼び出し元のキャンセルに関係なく解放する
				releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				_ = l.script.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, order.ErrOrderLocked
		}

		timer := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, order.ErrOrderLocked
			}
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func lockKey(orderID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, orderID)
}
