// Package catalog 分类、供应商、客户的维护用例
package catalog

import (
	"context"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
)

// Service 基础资料服务
type Service struct {
	tx         shared.TxManager
	categories category.Repository
	suppliers  supplier.Repository
	customers  customer.Repository
	products   product.Repository
	orders     sale.OrderRepository
}

// NewService 创建基础资料服务
func NewService(
	tx shared.TxManager,
	categories category.Repository,
	suppliers supplier.Repository,
	customers customer.Repository,
	products product.Repository,
	orders sale.OrderRepository,
) *Service {
	return &Service{
		tx:         tx,
		categories: categories,
		suppliers:  suppliers,
		customers:  customers,
		products:   products,
		orders:     orders,
	}
}

// ============ 分类 ============

// CreateCategory 新增分类
func (s *Service) CreateCategory(ctx context.Context, name string) (*category.Category, error) {
	c, err := category.NewCategory(name)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory 查询分类
func (s *Service) GetCategory(ctx context.Context, id uint) (*category.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// ListCategories 按名称排序
func (s *Service) ListCategories(ctx context.Context) ([]*category.Category, error) {
	return s.categories.List(ctx)
}

// RenameCategory 修改分类名称
func (s *Service) RenameCategory(ctx context.Context, id uint, name string) (*category.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory 分类下仍有商品时拒绝
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			return err
		}
		_, n, err := s.products.List(ctx, product.ListParams{CategoryID: id, Page: shared.Page{PageSize: 1}})
		if err != nil {
			return err
		}
		if n > 0 {
			return category.ErrCategoryInUse
		}
		return s.categories.Delete(ctx, id)
	})
}

// ============ 供应商 ============

// SupplierRequest 供应商字段
type SupplierRequest struct {
	Name  string
	Phone string
	Email string
}

// CreateSupplier 新增供应商
func (s *Service) CreateSupplier(ctx context.Context, req SupplierRequest) (*supplier.Supplier, error) {
	sp, err := supplier.NewSupplier(req.Name, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.suppliers.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// GetSupplier 查询供应商
func (s *Service) GetSupplier(ctx context.Context, id uint) (*supplier.Supplier, error) {
	return s.suppliers.FindByID(ctx, id)
}

// ListSuppliers 全部供应商
func (s *Service) ListSuppliers(ctx context.Context) ([]*supplier.Supplier, error) {
	return s.suppliers.List(ctx)
}

// UpdateSupplier 整体替换供应商字段
func (s *Service) UpdateSupplier(ctx context.Context, id uint, req SupplierRequest) (*supplier.Supplier, error) {
	sp, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *sp
	next.Name, next.Phone, next.Email = req.Name, req.Phone, req.Email
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.suppliers.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// DeleteSupplier 删除供应商
// 商品上的供应商只是参考信息，不阻止删除
func (s *Service) DeleteSupplier(ctx context.Context, id uint) error {
	return s.suppliers.Delete(ctx, id)
}

// ============ 客户 ============

// CustomerRequest 客户字段
type CustomerRequest struct {
	CI              string
	Names           string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
}

// CreateCustomer 新增客户，CI唯一
func (s *Service) CreateCustomer(ctx context.Context, req CustomerRequest) (*customer.Customer, error) {
	c, err := customer.NewCustomer(req.CI, req.Names, req.PaternalSurname, req.MaternalSurname, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCustomer 查询客户
func (s *Service) GetCustomer(ctx context.Context, id uint) (*customer.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

// ListCustomers 按CI、姓名搜索
func (s *Service) ListCustomers(ctx context.Context, params customer.ListParams) ([]*customer.Customer, int64, error) {
	params.Page = params.Page.Normalize()
	return s.customers.List(ctx, params)
}

// UpdateCustomer 整体替换客户字段
func (s *Service) UpdateCustomer(ctx context.Context, id uint, req CustomerRequest) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *c
	next.CI = req.CI
	next.Names = req.Names
	next.PaternalSurname = req.PaternalSurname
	next.MaternalSurname = req.MaternalSurname
	next.Email = req.Email
	next.Phone = req.Phone
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// DeleteCustomer 仍有未删除的销售单时拒绝
func (s *Service) DeleteCustomer(ctx context.Context, id uint) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.customers.FindByID(ctx, id); err != nil {
			return err
		}
		_, n, err := s.orders.List(ctx, sale.ListParams{CustomerID: id, Page: shared.Page{PageSize: 1}})
		if err != nil {
			return err
		}
		if n > 0 {
			return customer.ErrCustomerInUse
		}
		return s.customers.Delete(ctx, id)
	})
}
