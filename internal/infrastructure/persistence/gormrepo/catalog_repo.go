package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
)

// ============ 分类 ============

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	model := &CategoryModel{Name: c.Name}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return category.ErrNameDuplicate
		}
		return wrapDBError(err, "创建分类失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*category.Category, error) {
	var model CategoryModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, wrapDBError(err, "查询分类失败")
	}
	return toCategoryEntity(&model), nil
}

func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&CategoryModel{}).Where("id = ?", c.ID).Update("name", c.Name)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return category.ErrNameDuplicate
		}
		return wrapDBError(result.Error, "更新分类失败")
	}
	return checkUpdated(db, result, &CategoryModel{}, c.ID, category.ErrCategoryNotFound)
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&CategoryModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除分类失败")
	}
	if result.RowsAffected == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	var models []CategoryModel
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, wrapDBError(err, "查询分类列表失败")
	}
	list := make([]*category.Category, 0, len(models))
	for i := range models {
		list = append(list, toCategoryEntity(&models[i]))
	}
	return list, nil
}

func toCategoryEntity(m *CategoryModel) *category.Category {
	return &category.Category{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// ============ 供应商 ============

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓储
func NewSupplierRepository(db *gorm.DB) supplier.Repository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	model := &SupplierModel{Name: s.Name, Phone: s.Phone, Email: s.Email}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return wrapDBError(err, "创建供应商失败")
	}
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*supplier.Supplier, error) {
	var model SupplierModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, supplier.ErrSupplierNotFound
		}
		return nil, wrapDBError(err, "查询供应商失败")
	}
	return toSupplierEntity(&model), nil
}

func (r *supplierRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&SupplierModel{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"name":  s.Name,
		"phone": s.Phone,
		"email": s.Email,
	})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新供应商失败")
	}
	return checkUpdated(db, result, &SupplierModel{}, s.ID, supplier.ErrSupplierNotFound)
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&SupplierModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除供应商失败")
	}
	if result.RowsAffected == 0 {
		return supplier.ErrSupplierNotFound
	}
	return nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*supplier.Supplier, error) {
	var models []SupplierModel
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, wrapDBError(err, "查询供应商列表失败")
	}
	list := make([]*supplier.Supplier, 0, len(models))
	for i := range models {
		list = append(list, toSupplierEntity(&models[i]))
	}
	return list, nil
}

func toSupplierEntity(m *SupplierModel) *supplier.Supplier {
	return &supplier.Supplier{
		ID:        m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ============ 客户 ============

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓储
func NewCustomerRepository(db *gorm.DB) customer.Repository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	model := fromCustomerEntity(c)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return customer.ErrCIDuplicate
		}
		return wrapDBError(err, "创建客户失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*customer.Customer, error) {
	var model CustomerModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, wrapDBError(err, "查询客户失败")
	}
	return toCustomerEntity(&model), nil
}

func (r *customerRepository) FindByCI(ctx context.Context, ci string) (*customer.Customer, error) {
	var model CustomerModel
	if err := dbFrom(ctx, r.db).Where("ci = ?", ci).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, wrapDBError(err, "查询客户失败")
	}
	return toCustomerEntity(&model), nil
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&CustomerModel{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"ci":               c.CI,
		"names":            c.Names,
		"paternal_surname": c.PaternalSurname,
		"maternal_surname": c.MaternalSurname,
		"email":            c.Email,
		"phone":            c.Phone,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return customer.ErrCIDuplicate
		}
		return wrapDBError(result.Error, "更新客户失败")
	}
	return checkUpdated(db, result, &CustomerModel{}, c.ID, customer.ErrCustomerNotFound)
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&CustomerModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除客户失败")
	}
	if result.RowsAffected == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}

// List 分页查询,关键字不区分大小写匹配CI与姓名
func (r *customerRepository) List(ctx context.Context, params customer.ListParams) ([]*customer.Customer, int64, error) {
	page := params.Normalize()
	query := dbFrom(ctx, r.db).Model(&CustomerModel{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where(
			"LOWER(ci) LIKE LOWER(?) OR LOWER(names) LIKE LOWER(?) OR LOWER(paternal_surname) LIKE LOWER(?) OR LOWER(maternal_surname) LIKE LOWER(?)",
			kw, kw, kw, kw,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计客户数量失败")
	}

	var models []CustomerModel
	if err := query.Order("id ASC").Offset(page.Offset()).Limit(page.PageSize).Find(&models).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询客户列表失败")
	}

	list := make([]*customer.Customer, 0, len(models))
	for i := range models {
		list = append(list, toCustomerEntity(&models[i]))
	}
	return list, total, nil
}

func fromCustomerEntity(c *customer.Customer) *CustomerModel {
	return &CustomerModel{
		ID:              c.ID,
		CI:              c.CI,
		Names:           c.Names,
		PaternalSurname: c.PaternalSurname,
		MaternalSurname: c.MaternalSurname,
		Email:           c.Email,
		Phone:           c.Phone,
	}
}

func toCustomerEntity(m *CustomerModel) *customer.Customer {
	return &customer.Customer{
		ID:              m.ID,
		CI:              m.CI,
		Names:           m.Names,
		PaternalSurname: m.PaternalSurname,
		MaternalSurname: m.MaternalSurname,
		Email:           m.Email,
		Phone:           m.Phone,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
