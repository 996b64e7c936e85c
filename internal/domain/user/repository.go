package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层,具体实现在infrastructure/persistence层
type Repository interface {
	// Create 创建用户
	// 用户名已存在时返回errors.ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	// 如果不存在，返回errors.ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByUsername 根据用户名查找用户
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Count 有效用户总数(用于判断是否为首个用户)
	Count(ctx context.Context) (int64, error)
}
