package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := NewServiceWithCost(repo, bcrypt.MinCost)

	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil).Once()

	u, err := svc.Register(ctx, "cajero1", "clave123", RoleSeller, false)
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)
	assert.NotEqual(t, "clave123", u.Password)
	assert.False(t, u.IsAdmin())
	repo.AssertExpectations(t)
}

func TestService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewServiceWithCost(new(mockRepo), bcrypt.MinCost)

	_, err := svc.Register(ctx, "ab", "clave123", RoleSeller, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	_, err = svc.Register(ctx, "cajero1", "123456", RoleSeller, false)
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	_, err = svc.Register(ctx, "cajero1", "clave123", Role("root"), false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := NewServiceWithCost(repo, bcrypt.MinCost)

	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := NewUser("admin", string(hash), RoleAdmin, true)

	repo.On("FindByUsername", ctx, "admin").Return(stored, nil)
	repo.On("FindByUsername", ctx, "nadie").Return(nil, apperrors.ErrUserNotFound)

	u, err := svc.Login(ctx, "admin", "clave123")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = svc.Login(ctx, "admin", "otra999")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = svc.Login(ctx, "nadie", "clave123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword, "用户不存在与密码错误返回同一错误")
}
