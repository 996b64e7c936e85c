// Package category 商品分类
package category

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// Category 商品分类
type Category struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeCategoryNotFound, "分类不存在")
	ErrNameDuplicate    = apperrors.New(apperrors.ErrCodeCategoryNameDuplicate, "分类名称已存在")
	ErrInvalidName      = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名称不能为空且不超过50个字符")
	ErrCategoryInUse    = apperrors.New(apperrors.ErrCodeResourceInUse, "分类下仍有商品，不能删除")
)

// NewCategory 创建分类
func NewCategory(name string) (*Category, error) {
	c := &Category{}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	c.CreatedAt = c.UpdatedAt
	return c, nil
}

// Rename 修改名称
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 50 {
		return ErrInvalidName
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// Repository 分类仓储接口
type Repository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uint) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Category, error)
}
