// Package inventory 库存变动流水
//
// 每一次库存变化都追加一条流水，只增不改：
//   - SALE：新增或增加销售明细，扣减库存
//   - RESTORE：删除明细、减少数量或更换商品，归还库存
//   - ADJUST：管理员手工补货或盘亏
//
// 流水记录变化前后的库存，以及关联的销售单和明细，便于与销售数据对账。
package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/shared"
)

// MovementType 变动类型
type MovementType string

const (
	MovementSale    MovementType = "SALE"
	MovementRestore MovementType = "RESTORE"
	MovementAdjust  MovementType = "ADJUST"
)

// Movement 库存变动流水
type Movement struct {
	ID          uint
	ProductID   uint
	Type        MovementType
	Delta       int // 正数增加,负数减少
	StockBefore int
	StockAfter  int
	OrderID     uint // 0表示非销售引起
	LineItemID  uint
	Remark      string
	CreatedAt   time.Time
}

// NewSaleMovement 销售扣减
func NewSaleMovement(productID uint, quantity, before int, orderID, lineItemID uint) *Movement {
	return &Movement{
		ProductID:   productID,
		Type:        MovementSale,
		Delta:       -quantity,
		StockBefore: before,
		StockAfter:  before - quantity,
		OrderID:     orderID,
		LineItemID:  lineItemID,
		CreatedAt:   time.Now(),
	}
}

// NewRestoreMovement 归还库存
func NewRestoreMovement(productID uint, quantity, before int, orderID, lineItemID uint, reason string) *Movement {
	return &Movement{
		ProductID:   productID,
		Type:        MovementRestore,
		Delta:       quantity,
		StockBefore: before,
		StockAfter:  before + quantity,
		OrderID:     orderID,
		LineItemID:  lineItemID,
		Remark:      reason,
		CreatedAt:   time.Now(),
	}
}

// NewAdjustMovement 手工调整
func NewAdjustMovement(productID uint, delta, before int, remark string) *Movement {
	return &Movement{
		ProductID:   productID,
		Type:        MovementAdjust,
		Delta:       delta,
		StockBefore: before,
		StockAfter:  before + delta,
		Remark:      remark,
		CreatedAt:   time.Now(),
	}
}

// Repository 流水仓储接口
type Repository interface {
	Create(ctx context.Context, m *Movement) error

	// ListByProduct 按时间倒序分页查询商品的流水
	ListByProduct(ctx context.Context, productID uint, page shared.Page) ([]*Movement, int64, error)
}

// EventStockLow 低库存事件类型
const EventStockLow = "inventory.stock.low"

// StockLowEvent 销售后库存降到阈值及以下
type StockLowEvent struct {
	ProductID uint   `json:"product_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// IsLow threshold为0表示关闭告警
func IsLow(stock, threshold int) bool {
	return threshold > 0 && stock <= threshold
}
