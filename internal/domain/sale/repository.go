package sale

import (
	"context"

	"github.com/xiebiao/licoreria/internal/domain/shared"
)

// OrderRepository 销售单仓储接口
// 查询方法只返回未删除的销售单
type OrderRepository interface {
	// Create 创建空销售单
	Create(ctx context.Context, order *Order) error

	// FindByID 查找销售单(不加载明细),不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE),必须在事务中调用
	// 所有修改明细或合计的操作都先锁销售单,同一销售单上的操作因此串行
	LockByID(ctx context.Context, id uint) (*Order, error)

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)

	// Update 更新收银员、客户
	Update(ctx context.Context, order *Order) error

	// UpdateTotal 乐观锁更新合计
	// 条件为 id=? AND version=?,成功后version+1;条件不满足返回ErrConcurrencyConflict
	UpdateTotal(ctx context.Context, id uint, total int64, version int) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error
}

// LineItemRepository 销售明细仓储接口
// 查询方法只返回有效(未删除)的明细
type LineItemRepository interface {
	Create(ctx context.Context, item *LineItem) error

	// FindByID 不存在或已删除返回ErrLineItemNotFound
	FindByID(ctx context.Context, id uint) (*LineItem, error)

	// FindActive 查找销售单中某商品的有效明细,没有返回ErrLineItemNotFound
	FindActive(ctx context.Context, orderID, productID uint) (*LineItem, error)

	// ListByOrder 销售单的有效明细,按ID升序
	ListByOrder(ctx context.Context, orderID uint) ([]*LineItem, error)

	// CountActiveByProduct 引用某商品的有效明细数量
	CountActiveByProduct(ctx context.Context, productID uint) (int64, error)

	// Update 更新商品、数量、单价、小计
	Update(ctx context.Context, item *LineItem) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error
}

// ListParams 销售单列表参数
type ListParams struct {
	shared.Page
	UserID     uint // 0表示不过滤
	CustomerID uint // 0表示不过滤
}
