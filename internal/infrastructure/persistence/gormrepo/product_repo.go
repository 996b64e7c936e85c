package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/licoreria/internal/domain/product"
)

// productRepository 商品仓储实现
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// Create 创建商品,编码唯一性由UNIQUE索引保证
func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	model := fromProductEntity(p)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return product.ErrCodeDuplicate
		}
		return wrapDBError(err, "创建商品失败")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, wrapDBError(err, "查询商品失败")
	}
	return toProductEntity(&model), nil
}

func (r *productRepository) FindByCode(ctx context.Context, code string) (*product.Product, error) {
	var model ProductModel
	if err := dbFrom(ctx, r.db).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, wrapDBError(err, "查询商品失败")
	}
	return toProductEntity(&model), nil
}

// Update 更新基本信息与价格
// stock不在更新字段中,库存只能通过UpdateStock修改
func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&ProductModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":           p.Name,
		"description":    p.Description,
		"unit_type":      p.UnitType,
		"purchase_price": p.PurchasePrice,
		"sale_price":     p.SalePrice,
		"category_id":    p.CategoryID,
		"supplier_id":    p.SupplierID,
	})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新商品失败")
	}
	return checkUpdated(db, result, &ProductModel{}, p.ID, product.ErrProductNotFound)
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&ProductModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除商品失败")
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// List 分页查询
// 关键字不区分大小写匹配编码和名称
func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	page := params.Normalize()
	query := dbFrom(ctx, r.db).Model(&ProductModel{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("LOWER(code) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", kw, kw)
	}
	if params.CategoryID > 0 {
		query = query.Where("category_id = ?", params.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计商品数量失败")
	}

	var models []ProductModel
	if err := query.Order("id ASC").Offset(page.Offset()).Limit(page.PageSize).Find(&models).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询商品列表失败")
	}

	list := make([]*product.Product, 0, len(models))
	for i := range models {
		list = append(list, toProductEntity(&models[i]))
	}
	return list, total, nil
}

// LockByID 悲观锁查询(SELECT ... FOR UPDATE)
// 必须通过dbFrom(ctx)拿到事务DB,否则锁在语句结束时即释放
func (r *productRepository) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, wrapDBError(err, "锁定商品失败")
	}
	return toProductEntity(&model), nil
}

// UpdateStock 原子修改库存
// UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0
func (r *productRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		if isCheckViolation(result.Error) {
			return product.ErrInsufficientStock
		}
		return wrapDBError(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 商品不存在或库存不足,再查一次确定原因
		var model ProductModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return wrapDBError(err, "查询商品失败")
		}
		return product.ErrInsufficientStock
	}
	return nil
}

func fromProductEntity(p *product.Product) *ProductModel {
	return &ProductModel{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		UnitType:      p.UnitType,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Stock:         p.Stock,
		CategoryID:    p.CategoryID,
		SupplierID:    p.SupplierID,
	}
}

func toProductEntity(m *ProductModel) *product.Product {
	return &product.Product{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		Description:   m.Description,
		UnitType:      m.UnitType,
		PurchasePrice: m.PurchasePrice,
		SalePrice:     m.SalePrice,
		Stock:         m.Stock,
		CategoryID:    m.CategoryID,
		SupplierID:    m.SupplierID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
