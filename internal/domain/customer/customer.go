// Package customer 客户
package customer

import (
	"context"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/xiebiao/licoreria/internal/domain/shared"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// Customer 客户
// CI为身份证号,业务唯一
type Customer struct {
	ID              uint
	CI              string
	Names           string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var (
	ErrCustomerNotFound = apperrors.New(apperrors.ErrCodeCustomerNotFound, "客户不存在")
	ErrCIDuplicate      = apperrors.New(apperrors.ErrCodeCustomerCIDuplicate, "客户证件号已存在")
	ErrInvalidCI        = apperrors.New(apperrors.ErrCodeInvalidParams, "证件号不能为空且不超过10个字符")
	ErrInvalidNames     = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名不能为空且不超过50个字符")
	ErrInvalidSurname   = apperrors.New(apperrors.ErrCodeInvalidParams, "姓氏不能为空且不超过30个字符")
	ErrInvalidEmail     = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确且不超过30个字符")
	ErrInvalidPhone     = apperrors.New(apperrors.ErrCodeInvalidParams, "手机号不能为空且不超过8个字符")
	ErrCustomerInUse    = apperrors.New(apperrors.ErrCodeResourceInUse, "客户仍有销售单，不能删除")
)

// NewCustomer 创建客户
func NewCustomer(ci, names, paternal, maternal, email, phone string) (*Customer, error) {
	c := &Customer{
		CI:              ci,
		Names:           names,
		PaternalSurname: paternal,
		MaternalSurname: maternal,
		Email:           email,
		Phone:           phone,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

// Validate 字段校验
func (c *Customer) Validate() error {
	if c.CI == "" || utf8.RuneCountInString(c.CI) > 10 {
		return ErrInvalidCI
	}
	if c.Names == "" || utf8.RuneCountInString(c.Names) > 50 {
		return ErrInvalidNames
	}
	if !validSurname(c.PaternalSurname) || !validSurname(c.MaternalSurname) {
		return ErrInvalidSurname
	}
	if utf8.RuneCountInString(c.Email) > 30 {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidEmail
	}
	if c.Phone == "" || utf8.RuneCountInString(c.Phone) > 8 {
		return ErrInvalidPhone
	}
	return nil
}

// FullName 全名
func (c *Customer) FullName() string {
	return c.Names + " " + c.PaternalSurname + " " + c.MaternalSurname
}

func validSurname(s string) bool {
	return s != "" && utf8.RuneCountInString(s) <= 30
}

// Repository 客户仓储接口
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id uint) (*Customer, error)
	FindByCI(ctx context.Context, ci string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]*Customer, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	shared.Page
	Keyword string // 搜索CI、姓名
}
