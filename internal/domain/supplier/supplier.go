// Package supplier 供应商
package supplier

import (
	"context"
	"net/mail"
	"time"
	"unicode/utf8"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// Supplier 供应商
type Supplier struct {
	ID        uint
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrSupplierNotFound = apperrors.New(apperrors.ErrCodeSupplierNotFound, "供应商不存在")
	ErrInvalidName      = apperrors.New(apperrors.ErrCodeInvalidParams, "供应商名称不能为空且不超过50个字符")
	ErrInvalidPhone     = apperrors.New(apperrors.ErrCodeInvalidParams, "联系电话不超过15个字符")
	ErrInvalidEmail     = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
)

// NewSupplier 创建供应商
func NewSupplier(name, phone, email string) (*Supplier, error) {
	s := &Supplier{Name: name, Phone: phone, Email: email}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

// Validate 字段校验
func (s *Supplier) Validate() error {
	if s.Name == "" || utf8.RuneCountInString(s.Name) > 50 {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(s.Phone) > 15 {
		return ErrInvalidPhone
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}

// Repository 供应商仓储接口
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Supplier, error)
}
