package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/licoreria/internal/domain/user"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
	"github.com/xiebiao/licoreria/pkg/jwt"
	"github.com/xiebiao/licoreria/pkg/response"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxRole     = "role"
	ctxToken    = "access_token"
)

// AuthMiddleware JWT认证中间件
//  1. 从Header提取Bearer Token
//  2. 检查黑名单(已登出的Token)
//  3. 验证签名与过期时间，拒绝不带角色的Refresh Token
//  4. 将用户信息写入gin.Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore user.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := m.authenticate(c, token); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth 有Token则验证并注入用户信息，没有或无效时按匿名继续
// 用于注册接口：系统还没有用户时允许匿名注册第一个管理员
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			_ = m.authenticate(c, token)
		}
		c.Next()
	}
}

// RequireRole 要求指定角色之一，必须放在RequireAuth之后
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, GetRole(c)) {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	blocked, err := m.sessionStore.IsInBlacklist(c.Request.Context(), token)
	if err != nil {
		return err
	}
	if blocked {
		return apperrors.New(apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")
	}

	claims, err := m.jwtManager.ParseToken(token)
	if err != nil {
		return err
	}
	if claims.Role == "" {
		return apperrors.ErrInvalidToken
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, user.Role(claims.Role))
	c.Set(ctxToken, token)
	return nil
}

// bearerToken 格式：Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID 当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetRole 当前登录用户角色，未登录返回空
func GetRole(c *gin.Context) user.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(user.Role); ok {
			return r
		}
	}
	return ""
}

// GetToken 当前请求的Access Token(登出时加入黑名单)
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
