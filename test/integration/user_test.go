package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// TestUserRegister 注册与角色
func TestUserRegister(t *testing.T) {
	e := NewEnv(t)

	t.Run("第一个用户固定为管理员", func(t *testing.T) {
		resp := e.OK(e.Call("POST", "/api/v1/users", "", map[string]any{
			"username": "duena", "password": testPassword, "role": "vendedor",
		}))
		var u UserData
		e.Decode(resp, &u)
		assert.Equal(t, "admin", u.Role)
	})

	t.Run("之后匿名注册被拒绝", func(t *testing.T) {
		resp := e.Call("POST", "/api/v1/users", "", map[string]any{
			"username": "intruso", "password": testPassword,
		})
		assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
	})

	admin := e.Login("duena", testPassword)

	t.Run("管理员注册收银员", func(t *testing.T) {
		resp := e.OK(e.Call("POST", "/api/v1/users", admin.AccessToken, map[string]any{
			"username": "cajero1", "password": testPassword,
		}))
		var u UserData
		e.Decode(resp, &u)
		assert.Equal(t, "vendedor", u.Role)
	})

	t.Run("收银员不能注册用户", func(t *testing.T) {
		seller := e.Login("cajero1", testPassword)
		resp := e.Call("POST", "/api/v1/users", seller.AccessToken, map[string]any{
			"username": "cajero2", "password": testPassword,
		})
		assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
	})

	t.Run("用户名重复", func(t *testing.T) {
		resp := e.Call("POST", "/api/v1/users", admin.AccessToken, map[string]any{
			"username": "cajero1", "password": testPassword,
		})
		assert.Equal(t, apperrors.ErrCodeUsernameDuplicate, resp.Code)
	})

	t.Run("弱密码", func(t *testing.T) {
		resp := e.Call("POST", "/api/v1/users", admin.AccessToken, map[string]any{
			"username": "cajero3", "password": "abcdefg",
		})
		assert.Equal(t, apperrors.ErrCodeWeakPassword, resp.Code)
	})

	t.Run("参数缺失", func(t *testing.T) {
		resp := e.Call("POST", "/api/v1/users", admin.AccessToken, map[string]any{"username": "x"})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})
}

// TestUserSession 登录、刷新、登出
func TestUserSession(t *testing.T) {
	e := NewEnvWithUsers(t)

	t.Run("密码错误", func(t *testing.T) {
		resp := e.Call("POST", "/api/v1/users/login", "", map[string]any{
			"username": "cajero", "password": "Wrong1234",
		})
		assert.Equal(t, apperrors.ErrCodeInvalidPassword, resp.Code)
	})

	t.Run("未登录访问受保护接口", func(t *testing.T) {
		resp := e.Call("GET", "/api/v1/products", "", nil)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
	})

	login := e.Login("cajero", testPassword)

	t.Run("Refresh Token不能当Access Token使用", func(t *testing.T) {
		resp := e.Call("GET", "/api/v1/products", login.RefreshToken, nil)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)
	})

	t.Run("刷新得到可用的Access Token", func(t *testing.T) {
		var data struct {
			AccessToken string `json:"access_token"`
		}
		e.Decode(e.OK(e.Call("POST", "/api/v1/users/refresh", "", map[string]any{
			"refresh_token": login.RefreshToken,
		})), &data)
		require.NotEmpty(t, data.AccessToken)
		e.OK(e.Call("GET", "/api/v1/products", data.AccessToken, nil))
	})

	t.Run("登出后Token与会话失效", func(t *testing.T) {
		e.OK(e.Call("POST", "/api/v1/users/logout", login.AccessToken, nil))

		resp := e.Call("GET", "/api/v1/products", login.AccessToken, nil)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)

		resp = e.Call("POST", "/api/v1/users/refresh", "", map[string]any{"refresh_token": login.RefreshToken})
		assert.NotEqual(t, 0, resp.Code)
	})
}

// TestRolePermissions 收银员只能做销售与客户维护
func TestRolePermissions(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Cervezas")

	resp := e.Call("POST", "/api/v1/categories", e.SellerToken, map[string]any{"name": "Vinos"})
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)

	resp = e.Call("POST", "/api/v1/products", e.SellerToken, map[string]any{
		"code": "P1", "name": "Paceña", "unit_type": "botella",
		"purchase_price": "8.00", "sale_price": "10.00", "category_id": categoryID,
	})
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)

	// 读取不受限
	e.OK(e.Call("GET", "/api/v1/categories", e.SellerToken, nil))
	e.OK(e.Call("GET", "/api/v1/products", e.SellerToken, nil))

	// 客户可由收银员维护，删除仅限管理员
	customerID := e.CreateCustomer("1234567")
	resp = e.Call("DELETE", "/api/v1/customers/"+itoa(customerID), e.SellerToken, nil)
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
	e.OK(e.Call("DELETE", "/api/v1/customers/"+itoa(customerID), e.AdminToken, nil))
}
