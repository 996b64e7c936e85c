package sale

import (
	"time"
)

// Order 销售单(聚合根)
// 设计说明:
// 1. Order是聚合根,LineItem是子实体,所有明细的增删改都通过销售台账(Ledger)完成
// 2. Total是冗余的合计字段,每次明细变化后由RecomputeTotal重新计算,从不接受外部传入的值
// 3. Version用于合计字段的乐观并发控制,每次更新合计后+1
// 4. 新建的销售单没有明细,合计为0
type Order struct {
	ID         uint
	OrderNo    string // 销售单号(业务主键)
	UserID     uint   // 收银员
	CustomerID uint   // 客户
	Total      int64  // 合计(分) = 有效明细小计之和
	Version    int
	Items      []*LineItem // 有效明细,仅在查询详情时加载
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// NewOrder 创建空销售单(工厂方法)
func NewOrder(orderNo string, userID, customerID uint) *Order {
	now := time.Now()
	return &Order{
		OrderNo:    orderNo,
		UserID:     userID,
		CustomerID: customerID,
		Total:      0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Reassign 修改收银员或客户(0表示不修改)
func (o *Order) Reassign(userID, customerID uint) {
	if userID != 0 {
		o.UserID = userID
	}
	if customerID != 0 {
		o.CustomerID = customerID
	}
	o.UpdatedAt = time.Now()
}

// IsActive 是否未删除
func (o *Order) IsActive() bool {
	return o.DeletedAt == nil
}

// MarkDeleted 软删除(终态)
func (o *Order) MarkDeleted(at time.Time) {
	o.DeletedAt = &at
	o.UpdatedAt = at
}
