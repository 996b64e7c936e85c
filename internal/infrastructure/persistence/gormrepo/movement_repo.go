package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/shared"
)

type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建库存流水仓储
func NewMovementRepository(db *gorm.DB) inventory.Repository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, m *inventory.Movement) error {
	model := &MovementModel{
		ProductID:   m.ProductID,
		Type:        string(m.Type),
		Delta:       m.Delta,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		OrderID:     m.OrderID,
		LineItemID:  m.LineItemID,
		Remark:      m.Remark,
		CreatedAt:   m.CreatedAt,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return wrapDBError(err, "记录库存流水失败")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	return nil
}

func (r *movementRepository) ListByProduct(ctx context.Context, productID uint, page shared.Page) ([]*inventory.Movement, int64, error) {
	page = page.Normalize()
	query := dbFrom(ctx, r.db).Model(&MovementModel{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计库存流水失败")
	}

	var models []MovementModel
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&models).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询库存流水失败")
	}

	list := make([]*inventory.Movement, 0, len(models))
	for _, m := range models {
		list = append(list, &inventory.Movement{
			ID:          m.ID,
			ProductID:   m.ProductID,
			Type:        inventory.MovementType(m.Type),
			Delta:       m.Delta,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			OrderID:     m.OrderID,
			LineItemID:  m.LineItemID,
			Remark:      m.Remark,
			CreatedAt:   m.CreatedAt,
		})
	}
	return list, total, nil
}
