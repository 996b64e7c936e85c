package dto

import (
	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
)

const timeLayout = "2006-01-02 15:04:05"

// CategoryRequest 新增/修改分类
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// CategoryResponse 分类
type CategoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// FromCategory 领域实体转响应
func FromCategory(c *category.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt.Format(timeLayout)}
}

// SupplierRequest 新增/修改供应商
type SupplierRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Phone string `json:"phone" binding:"max=15"`
	Email string `json:"email" binding:"omitempty,email"`
}

// SupplierResponse 供应商
type SupplierResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// FromSupplier 领域实体转响应
func FromSupplier(s *supplier.Supplier) SupplierResponse {
	return SupplierResponse{ID: s.ID, Name: s.Name, Phone: s.Phone, Email: s.Email}
}

// CustomerRequest 新增/修改客户
type CustomerRequest struct {
	CI              string `json:"ci" binding:"required,max=10"`
	Names           string `json:"names" binding:"required,max=50"`
	PaternalSurname string `json:"paternal_surname" binding:"required,max=30"`
	MaternalSurname string `json:"maternal_surname" binding:"required,max=30"`
	Email           string `json:"email" binding:"required,email,max=30"`
	Phone           string `json:"phone" binding:"required,max=8"`
}

// CustomerResponse 客户
type CustomerResponse struct {
	ID              uint   `json:"id"`
	CI              string `json:"ci"`
	Names           string `json:"names"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

// FromCustomer 领域实体转响应
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		CI:              c.CI,
		Names:           c.Names,
		PaternalSurname: c.PaternalSurname,
		MaternalSurname: c.MaternalSurname,
		FullName:        c.FullName(),
		Email:           c.Email,
		Phone:           c.Phone,
	}
}

// ListQuery 分页与关键词
type ListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Keyword  string `form:"keyword"`
}
