package user

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// Service 用户领域服务
// 包含不属于单个实体的业务逻辑（密码加密、验证）
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, username, password string, role Role, premium bool) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, username, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: 12}
}

// NewServiceWithCost 指定bcrypt cost(测试中使用bcrypt.MinCost加速)
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Register 用户注册
// 业务规则：
// 1. 用户名3-20位，字母数字和 _ . -
// 2. 密码6-20位，包含字母和数字
// 3. 角色只能是admin或vendedor
// 4. 用户名唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, username, password string, role Role, premium bool) (*User, error) {
	if n := utf8.RuneCountInString(username); n < 3 || n > 20 || !usernamePattern.MatchString(username) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "用户名应为3-20位字母、数字或_.-")
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	if !role.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "角色只能是admin或vendedor")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	user := NewUser(username, string(hashedPassword), role, premium)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login 用户登录
// 用户不存在与密码错误返回同一个错误,避免枚举用户名
func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := s.ValidatePassword(user.Password, password); err != nil {
		return nil, err
	}

	return user, nil
}

// ValidatePassword 验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// validatePasswordStrength 密码强度校验
// 规则：6-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 6 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}

	return nil
}
