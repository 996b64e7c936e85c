package sale

import (
	"time"
)

// LineItem 销售明细
// 1. UnitPrice是创建时商品售价的快照,之后商品调价不影响已有明细
// 2. Subtotal = Quantity × UnitPrice,始终由实体自己计算
// 3. 只能从有效状态软删除到已删除状态,不可恢复
type LineItem struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Quantity  int
	UnitPrice int64 // 单价快照(分)
	Subtotal  int64 // 小计(分)
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewLineItem 创建销售明细
func NewLineItem(orderID, productID uint, quantity int, unitPrice int64) (*LineItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	li := &LineItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	li.Subtotal = li.computeSubtotal()
	return li, nil
}

// ChangeQuantity 修改数量,小计按原快照单价重新计算
func (li *LineItem) ChangeQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	li.Quantity = quantity
	li.Subtotal = li.computeSubtotal()
	li.UpdatedAt = time.Now()
	return nil
}

// ChangeProduct 更换商品,单价重新取新商品当前售价
func (li *LineItem) ChangeProduct(productID uint, unitPrice int64) {
	li.ProductID = productID
	li.UnitPrice = unitPrice
	li.Subtotal = li.computeSubtotal()
	li.UpdatedAt = time.Now()
}

// IsActive 是否有效
func (li *LineItem) IsActive() bool {
	return li.DeletedAt == nil
}

// MarkDeleted 软删除
func (li *LineItem) MarkDeleted(at time.Time) {
	li.DeletedAt = &at
	li.UpdatedAt = at
}

func (li *LineItem) computeSubtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}
