package user

import (
	"context"

	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/user"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// RegisterUseCase 用户注册用例
// 系统中还没有用户时任何人都可以注册，且第一个用户固定为管理员；
// 之后只有管理员可以注册新用户
type RegisterUseCase struct {
	tx          shared.TxManager
	userService user.Service
	users       user.Repository
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(tx shared.TxManager, userService user.Service, users user.Repository) *RegisterUseCase {
	return &RegisterUseCase{
		tx:          tx,
		userService: userService,
		users:       users,
	}
}

// Execute 执行注册
// callerRole为空表示匿名调用
func (uc *RegisterUseCase) Execute(ctx context.Context, callerRole user.Role, req RegisterRequest) (*UserInfo, error) {
	var created *user.User
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		n, err := uc.users.Count(ctx)
		if err != nil {
			return err
		}

		role := req.Role
		if n == 0 {
			role = user.RoleAdmin
		} else if callerRole != user.RoleAdmin {
			return apperrors.ErrForbidden
		}

		u, err := uc.userService.Register(ctx, req.Username, req.Password, role, req.Premium)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := toUserInfo(created)
	return &info, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Password string
	Role     user.Role
	Premium  bool
}

// UserInfo 用户信息，不含密码
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Premium  bool   `json:"premium"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		Premium:  u.Premium,
	}
}
