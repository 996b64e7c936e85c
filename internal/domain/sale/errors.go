package sale

import (
	"fmt"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// 销售领域错误定义
var (
	ErrOrderNotFound    = apperrors.New(apperrors.ErrCodeOrderNotFound, "销售单不存在")
	ErrLineItemNotFound = apperrors.New(apperrors.ErrCodeLineItemNotFound, "销售明细不存在")

	// ErrDuplicateLineItem 同一销售单已有该商品的有效明细,应修改原明细的数量
	ErrDuplicateLineItem = apperrors.New(apperrors.ErrCodeDuplicateLineItem, "该商品已在销售单中，请修改数量")

	// ErrInsufficientStock 库存不足,具体数量见StockShortage
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrConcurrencyConflict 并发修改冲突,可重试
	ErrConcurrencyConflict = apperrors.ErrConcurrencyConflict

	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "数量必须大于0")

	// ErrNothingToUpdate 修改明细时既没有指定商品也没有指定数量
	ErrNothingToUpdate = apperrors.New(apperrors.ErrCodeInvalidParams, "至少需要修改商品或数量")
)

// StockShortage 库存不足的细节
// 通过errors.As从库存不足错误中取出
type StockShortage struct {
	ProductID uint
	Requested int
	Available int
}

func (s *StockShortage) Error() string {
	return fmt.Sprintf("product %d: requested %d, available %d", s.ProductID, s.Requested, s.Available)
}

// NewInsufficientStockError 创建携带请求数量与可用数量的库存不足错误
// errors.Is(err, ErrInsufficientStock) 成立
func NewInsufficientStockError(productID uint, requested, available int) error {
	return apperrors.WithDetail(
		ErrInsufficientStock,
		fmt.Sprintf("库存不足：需要%d，可用%d", requested, available),
		&StockShortage{ProductID: productID, Requested: requested, Available: available},
	)
}
