package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/licoreria/internal/domain/sale"
)

// orderRepository 销售单仓储实现
// GORM的软删除作用域保证查询只返回deleted_at IS NULL的销售单
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建销售单仓储
func NewOrderRepository(db *gorm.DB) sale.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *sale.Order) error {
	model := &OrderModel{
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		CustomerID: o.CustomerID,
		Total:      o.Total,
		Version:    o.Version,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return wrapDBError(err, "创建销售单失败")
	}
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*sale.Order, error) {
	var model OrderModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrOrderNotFound
		}
		return nil, wrapDBError(err, "查询销售单失败")
	}
	return toOrderEntity(&model), nil
}

// LockByID SELECT ... FOR UPDATE
// 同一销售单上的明细操作在这里排队
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*sale.Order, error) {
	var model OrderModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrOrderNotFound
		}
		return nil, wrapDBError(err, "锁定销售单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) List(ctx context.Context, params sale.ListParams) ([]*sale.Order, int64, error) {
	page := params.Normalize()
	query := dbFrom(ctx, r.db).Model(&OrderModel{})
	if params.UserID > 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.CustomerID > 0 {
		query = query.Where("customer_id = ?", params.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计销售单数量失败")
	}

	var models []OrderModel
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&models).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询销售单列表失败")
	}

	orders := make([]*sale.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrderEntity(&models[i]))
	}
	return orders, total, nil
}

// Update 只更新收银员、客户,合计走UpdateTotal
func (r *orderRepository) Update(ctx context.Context, o *sale.Order) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&OrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"user_id":     o.UserID,
		"customer_id": o.CustomerID,
	})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新销售单失败")
	}
	return checkUpdated(db, result, &OrderModel{}, o.ID, sale.ErrOrderNotFound)
}

// UpdateTotal 乐观锁更新合计
// UPDATE orders SET total = ?, version = version + 1 WHERE id = ? AND version = ? AND deleted_at IS NULL
func (r *orderRepository) UpdateTotal(ctx context.Context, id uint, total int64, version int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&OrderModel{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"total":   total,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新销售单合计失败")
	}

	if result.RowsAffected == 0 {
		var n int64
		if err := db.Model(&OrderModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return wrapDBError(err, "查询销售单失败")
		}
		if n == 0 {
			return sale.ErrOrderNotFound
		}
		return sale.ErrConcurrencyConflict
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&OrderModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除销售单失败")
	}
	if result.RowsAffected == 0 {
		return sale.ErrOrderNotFound
	}
	return nil
}

func toOrderEntity(m *OrderModel) *sale.Order {
	return &sale.Order{
		ID:         m.ID,
		OrderNo:    m.OrderNo,
		UserID:     m.UserID,
		CustomerID: m.CustomerID,
		Total:      m.Total,
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		DeletedAt:  deletedAtPtr(m.DeletedAt),
	}
}

func deletedAtPtr(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
