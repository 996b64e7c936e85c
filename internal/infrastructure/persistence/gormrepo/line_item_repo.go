package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/licoreria/internal/domain/sale"
)

// lineItemRepository 销售明细仓储实现
type lineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository 创建销售明细仓储
func NewLineItemRepository(db *gorm.DB) sale.LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) Create(ctx context.Context, li *sale.LineItem) error {
	model := &LineItemModel{
		OrderID:   li.OrderID,
		ProductID: li.ProductID,
		Quantity:  li.Quantity,
		UnitPrice: li.UnitPrice,
		Subtotal:  li.Subtotal,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return wrapDBError(err, "创建销售明细失败")
	}
	li.ID = model.ID
	li.CreatedAt = model.CreatedAt
	li.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *lineItemRepository) FindByID(ctx context.Context, id uint) (*sale.LineItem, error) {
	var model LineItemModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrLineItemNotFound
		}
		return nil, wrapDBError(err, "查询销售明细失败")
	}
	return toLineItemEntity(&model), nil
}

func (r *lineItemRepository) FindActive(ctx context.Context, orderID, productID uint) (*sale.LineItem, error) {
	var model LineItemModel
	err := dbFrom(ctx, r.db).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrLineItemNotFound
		}
		return nil, wrapDBError(err, "查询销售明细失败")
	}
	return toLineItemEntity(&model), nil
}

func (r *lineItemRepository) ListByOrder(ctx context.Context, orderID uint) ([]*sale.LineItem, error) {
	var models []LineItemModel
	if err := dbFrom(ctx, r.db).Where("order_id = ?", orderID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, wrapDBError(err, "查询销售明细失败")
	}
	items := make([]*sale.LineItem, 0, len(models))
	for i := range models {
		items = append(items, toLineItemEntity(&models[i]))
	}
	return items, nil
}

func (r *lineItemRepository) CountActiveByProduct(ctx context.Context, productID uint) (int64, error) {
	var n int64
	if err := dbFrom(ctx, r.db).Model(&LineItemModel{}).Where("product_id = ?", productID).Count(&n).Error; err != nil {
		return 0, wrapDBError(err, "统计销售明细失败")
	}
	return n, nil
}

// Update order_id不可修改
func (r *lineItemRepository) Update(ctx context.Context, li *sale.LineItem) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&LineItemModel{}).Where("id = ?", li.ID).Updates(map[string]interface{}{
		"product_id": li.ProductID,
		"quantity":   li.Quantity,
		"unit_price": li.UnitPrice,
		"subtotal":   li.Subtotal,
	})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新销售明细失败")
	}
	return checkUpdated(db, result, &LineItemModel{}, li.ID, sale.ErrLineItemNotFound)
}

func (r *lineItemRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&LineItemModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除销售明细失败")
	}
	if result.RowsAffected == 0 {
		return sale.ErrLineItemNotFound
	}
	return nil
}

func toLineItemEntity(m *LineItemModel) *sale.LineItem {
	return &sale.LineItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Subtotal:  m.Subtotal,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: deletedAtPtr(m.DeletedAt),
	}
}
