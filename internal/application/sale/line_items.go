package sale

import (
	"context"
	"errors"

	"github.com/xiebiao/licoreria/internal/domain/sale"
)

// CreateLineItem 向销售单添加一条明细
//  1. 锁定销售单行(同一销售单上的操作串行)
//  2. 锁定商品行，检查同商品的有效明细和库存
//  3. 以商品当前售价为快照创建明细，扣减库存，写SALE流水
//  4. 重算合计
func (l *Ledger) CreateLineItem(ctx context.Context, orderID, productID uint, quantity int) (*sale.LineItem, error) {
	if quantity <= 0 {
		return nil, sale.ErrInvalidQuantity
	}

	var result *sale.LineItem
	err := l.execute(ctx, "create_line_item", func(ctx context.Context, out *outbox) error {
		order, err := l.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}

		locked, err := l.lockProducts(ctx, productID)
		if err != nil {
			return err
		}
		p := locked[productID]

		if err := l.ensureNoActiveLine(ctx, order.ID, p.ID); err != nil {
			return err
		}
		if !p.HasStock(quantity) {
			return sale.NewInsufficientStockError(p.ID, quantity, p.Stock)
		}

		li, err := sale.NewLineItem(order.ID, p.ID, quantity, p.SalePrice)
		if err != nil {
			return err
		}
		if err := l.items.Create(ctx, li); err != nil {
			return err
		}
		if err := l.takeStock(ctx, out, p, quantity, order.ID, li.ID); err != nil {
			return err
		}

		total, err := l.refreshTotal(ctx, order)
		if err != nil {
			return err
		}
		out.add(sale.EventLineItemCreated, sale.NewLineItemEvent(li, total))
		result = li
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLineItemRequest 修改明细参数，nil表示不修改
type UpdateLineItemRequest struct {
	LineItemID uint
	ProductID  *uint
	Quantity   *int
}

// UpdateLineItem 修改明细的商品或数量
//
// 更换商品等价于 删除旧明细 + 添加新明细：旧商品按原数量归还库存，
// 新商品按新数量扣减库存，单价取新商品当前售价。
// 只改数量时按差值增减库存，小计按原快照单价计算。
func (l *Ledger) UpdateLineItem(ctx context.Context, req UpdateLineItemRequest) (*sale.LineItem, error) {
	if req.ProductID == nil && req.Quantity == nil {
		return nil, sale.ErrNothingToUpdate
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, sale.ErrInvalidQuantity
	}

	var result *sale.LineItem
	err := l.execute(ctx, "update_line_item", func(ctx context.Context, out *outbox) error {
		order, li, err := l.lockLine(ctx, req.LineItemID)
		if err != nil {
			return err
		}

		newQty := li.Quantity
		if req.Quantity != nil {
			newQty = *req.Quantity
		}

		if req.ProductID != nil && *req.ProductID != li.ProductID {
			err = l.switchProduct(ctx, out, order, li, *req.ProductID, newQty)
		} else {
			err = l.changeQuantity(ctx, out, order, li, newQty)
		}
		if err != nil {
			return err
		}

		if err := l.items.Update(ctx, li); err != nil {
			return err
		}
		total, err := l.refreshTotal(ctx, order)
		if err != nil {
			return err
		}
		out.add(sale.EventLineItemUpdated, sale.NewLineItemEvent(li, total))
		result = li
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) switchProduct(ctx context.Context, out *outbox, order *sale.Order, li *sale.LineItem, newProductID uint, quantity int) error {
	locked, err := l.lockProducts(ctx, li.ProductID, newProductID)
	if err != nil {
		return err
	}
	oldP, newP := locked[li.ProductID], locked[newProductID]

	if err := l.ensureNoActiveLine(ctx, order.ID, newP.ID); err != nil {
		return err
	}
	if !newP.HasStock(quantity) {
		return sale.NewInsufficientStockError(newP.ID, quantity, newP.Stock)
	}

	if err := l.restoreStock(ctx, oldP, li.Quantity, order.ID, li.ID, "更换商品"); err != nil {
		return err
	}
	if err := l.takeStock(ctx, out, newP, quantity, order.ID, li.ID); err != nil {
		return err
	}

	li.ChangeProduct(newP.ID, newP.SalePrice)
	return li.ChangeQuantity(quantity)
}

func (l *Ledger) changeQuantity(ctx context.Context, out *outbox, order *sale.Order, li *sale.LineItem, quantity int) error {
	delta := quantity - li.Quantity
	if delta == 0 {
		return nil
	}

	locked, err := l.lockProducts(ctx, li.ProductID)
	if err != nil {
		return err
	}
	p := locked[li.ProductID]

	if delta > 0 {
		if err := l.takeStock(ctx, out, p, delta, order.ID, li.ID); err != nil {
			return err
		}
	} else {
		if err := l.restoreStock(ctx, p, -delta, order.ID, li.ID, "减少数量"); err != nil {
			return err
		}
	}
	return li.ChangeQuantity(quantity)
}

// DeleteLineItem 软删除明细，归还库存并重算合计
func (l *Ledger) DeleteLineItem(ctx context.Context, lineItemID uint) error {
	return l.execute(ctx, "delete_line_item", func(ctx context.Context, out *outbox) error {
		order, li, err := l.lockLine(ctx, lineItemID)
		if err != nil {
			return err
		}

		locked, err := l.lockProducts(ctx, li.ProductID)
		if err != nil {
			return err
		}

		if err := l.items.Delete(ctx, li.ID); err != nil {
			return err
		}
		if err := l.restoreStock(ctx, locked[li.ProductID], li.Quantity, order.ID, li.ID, "删除明细"); err != nil {
			return err
		}

		total, err := l.refreshTotal(ctx, order)
		if err != nil {
			return err
		}
		out.add(sale.EventLineItemDeleted, sale.NewLineItemEvent(li, total))
		return nil
	})
}

// GetLineItem 查询有效明细
func (l *Ledger) GetLineItem(ctx context.Context, lineItemID uint) (*sale.LineItem, error) {
	return l.items.FindByID(ctx, lineItemID)
}

// ListLineItems 销售单的有效明细
func (l *Ledger) ListLineItems(ctx context.Context, orderID uint) ([]*sale.LineItem, error) {
	if _, err := l.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return l.items.ListByOrder(ctx, orderID)
}

// lockLine 先读明细拿到销售单ID，锁定销售单后重新读取明细
// 第二次读取在销售单锁内，可以看到并发删除的结果
func (l *Ledger) lockLine(ctx context.Context, lineItemID uint) (*sale.Order, *sale.LineItem, error) {
	li, err := l.items.FindByID(ctx, lineItemID)
	if err != nil {
		return nil, nil, err
	}
	order, err := l.orders.LockByID(ctx, li.OrderID)
	if err != nil {
		return nil, nil, err
	}
	li, err = l.items.FindByID(ctx, lineItemID)
	if err != nil {
		return nil, nil, err
	}
	return order, li, nil
}

func (l *Ledger) ensureNoActiveLine(ctx context.Context, orderID, productID uint) error {
	_, err := l.items.FindActive(ctx, orderID, productID)
	switch {
	case err == nil:
		return sale.ErrDuplicateLineItem
	case errors.Is(err, sale.ErrLineItemNotFound):
		return nil
	default:
		return err
	}
}
