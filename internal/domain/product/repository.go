package product

import (
	"context"

	"github.com/xiebiao/licoreria/internal/domain/shared"
)

// Repository 商品仓储接口
// 由domain层定义接口,infrastructure层实现(gormrepo / memory)
type Repository interface {
	// Create 创建商品,编码重复返回ErrCodeDuplicate
	Create(ctx context.Context, p *Product) error

	// FindByID 根据ID查找有效商品,不存在返回ErrProductNotFound
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindByCode 根据编码查找商品
	FindByCode(ctx context.Context, code string) (*Product, error)

	// Update 更新商品基本信息与价格(不修改库存)
	Update(ctx context.Context, p *Product) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Product, error)

	// UpdateStock 原子修改库存
	// delta为正数表示增加,负数表示减少;结果小于0时返回ErrInsufficientStock且不修改
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	shared.Page
	Keyword    string // 搜索编码、名称
	CategoryID uint   // 0表示不过滤
}
