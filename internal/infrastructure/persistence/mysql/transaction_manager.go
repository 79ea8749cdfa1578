package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// MySQLのエラー番号
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// defaultMaxAttempts デッドロック時にトランザクション全体をやり直す最大回数
const defaultMaxAttempts = 3

// TransactionManager トランザクション管理を提供
// 注文の更新とメタデータ・メモの書き込みを一つのトランザクションにまとめる
type TransactionManager struct {
	db          *DB
	maxAttempts int
}

// NewTransactionManager 新しいトランザクションマネージャーを作成
func NewTransactionManager(db *DB) *TransactionManager {
	return &TransactionManager{db: db, maxAttempts: defaultMaxAttempts}
}

// WithTransaction トランザクション内で関数を実行
// fnがエラーを返すかパニックした場合はロールバックし、それ以外はコミットする。
// デッドロックまたはロック待ちタイムアウトの場合はfnを最初からやり直す。
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= tm.maxAttempts; attempt++ {
		err = tm.run(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", tm.maxAttempts, err)
}

func (tm *TransactionManager) run(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(tx)
}

// isRetryable やり直しで解消し得るロック競合か
func isRetryable(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == errDeadlock || mysqlErr.Number == errLockWaitTimeout
}
