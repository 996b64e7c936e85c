package sale

import (
	"context"

	"github.com/xiebiao/licoreria/internal/domain/sale"
)

// CreateOrder 创建空销售单，合计为0
// 同一客户可以有多张销售单
func (l *Ledger) CreateOrder(ctx context.Context, userID, customerID uint) (*sale.Order, error) {
	var result *sale.Order
	err := l.execute(ctx, "create_order", func(ctx context.Context, _ *outbox) error {
		if _, err := l.users.FindByID(ctx, userID); err != nil {
			return err
		}
		if _, err := l.customers.FindByID(ctx, customerID); err != nil {
			return err
		}

		order := sale.NewOrder(sale.GenerateOrderNo(), userID, customerID)
		if err := l.orders.Create(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetOrder 查询销售单及其有效明细
func (l *Ledger) GetOrder(ctx context.Context, orderID uint) (*sale.Order, error) {
	order, err := l.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := l.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// ListOrders 分页查询销售单(不含明细)
func (l *Ledger) ListOrders(ctx context.Context, params sale.ListParams) ([]*sale.Order, int64, error) {
	params.Page = params.Page.Normalize()
	return l.orders.List(ctx, params)
}

// UpdateOrder 修改收银员或客户，0表示不修改
func (l *Ledger) UpdateOrder(ctx context.Context, orderID, userID, customerID uint) (*sale.Order, error) {
	var result *sale.Order
	err := l.execute(ctx, "update_order", func(ctx context.Context, _ *outbox) error {
		if userID != 0 {
			if _, err := l.users.FindByID(ctx, userID); err != nil {
				return err
			}
		}
		if customerID != 0 {
			if _, err := l.customers.FindByID(ctx, customerID); err != nil {
				return err
			}
		}

		order, err := l.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		order.Reassign(userID, customerID)
		if err := l.orders.Update(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOrder 软删除销售单
// 有效明细一并软删除并归还库存，与删除单条明细的效果一致
func (l *Ledger) DeleteOrder(ctx context.Context, orderID uint) error {
	return l.execute(ctx, "delete_order", func(ctx context.Context, out *outbox) error {
		order, err := l.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		items, err := l.items.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(items))
		for _, li := range items {
			ids = append(ids, li.ProductID)
		}
		locked, err := l.lockProducts(ctx, ids...)
		if err != nil {
			return err
		}

		for _, li := range items {
			if err := l.items.Delete(ctx, li.ID); err != nil {
				return err
			}
			if err := l.restoreStock(ctx, locked[li.ProductID], li.Quantity, order.ID, li.ID, "删除销售单"); err != nil {
				return err
			}
		}
		if err := l.orders.Delete(ctx, order.ID); err != nil {
			return err
		}

		out.add(sale.EventOrderDeleted, sale.OrderDeletedEvent{
			OrderID:       order.ID,
			OrderNo:       order.OrderNo,
			RestoredLines: len(items),
		})
		return nil
	})
}

// RecomputeTotal 按有效明细计算合计，不写库
func (l *Ledger) RecomputeTotal(ctx context.Context, orderID uint) (int64, error) {
	if _, err := l.orders.FindByID(ctx, orderID); err != nil {
		return 0, err
	}
	items, err := l.items.ListByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return sale.RecomputeTotal(items), nil
}
