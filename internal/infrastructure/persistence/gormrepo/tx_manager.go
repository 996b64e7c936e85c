package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/licoreria/internal/domain/shared"
)

// txKey 事务DB在context中的key
type txKey struct{}

// TxManager 事务管理器
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB
// 3. 嵌套调用时复用外层事务,GORM自动使用Savepoint
type TxManager struct {
	db *gorm.DB
}

var _ shared.TxManager = (*TxManager)(nil)

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn返回error时ROLLBACK,返回nil时COMMIT;
// 提交阶段的死锁、序列化失败转换为ErrConcurrencyConflict,由调用方决定是否重试
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    order, err := orderRepo.LockByID(ctx, orderID)
//	    if err != nil {
//	        return err
//	    }
//	    if err := productRepo.UpdateStock(ctx, productID, -quantity); err != nil {
//	        return err // 回滚
//	    }
//	    return orderRepo.UpdateTotal(ctx, order.ID, total, order.Version)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := dbFrom(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if isConflictError(err) {
		return wrapDBError(err, "事务执行失败")
	}
	return err
}

// dbFrom 优先使用context中的事务DB
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
