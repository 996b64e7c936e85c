package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/user"
	"github.com/xiebiao/licoreria/pkg/jwt"
)

// LoginUseCase 用户登录用例
//  1. 验证用户名密码
//  2. 生成JWT Token对
//  3. 保存会话，有效期与Refresh Token一致
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
	sessionTTL   time.Duration
	logger       *slog.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore user.SessionStore,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.sessionTTL); err != nil {
		// 会话是Refresh Token换新的前提，保存失败时登录也失败
		return nil, err
	}

	uc.logger.InfoContext(ctx, "用户登录",
		slog.Uint64("user_id", uint64(u.ID)),
		slog.String("role", string(u.Role)),
		slog.String("ip", req.ClientIP),
	)

	return &LoginResponse{
		User:         toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore user.SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore user.SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 执行登出
// 删除会话使Refresh Token失效，Access Token进黑名单直到自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenTTL())
}

// RefreshUseCase 使用Refresh Token换取新的Access Token
type RefreshUseCase struct {
	users        user.Repository
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewRefreshUseCase 创建刷新用例
func NewRefreshUseCase(users user.Repository, jwtManager *jwt.Manager, sessionStore user.SessionStore) *RefreshUseCase {
	return &RefreshUseCase{users: users, jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 会话不存在(已登出或过期)时返回ErrUnauthorized
// 角色从用户表重新读取
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := uc.sessionStore.GetSession(ctx, claims.UserID); err != nil {
		return nil, err
	}
	u, err := uc.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := uc.jwtManager.RefreshAccessToken(refreshToken, u.Username, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
