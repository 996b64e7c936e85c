package user

import (
	"context"
	"time"
)

// SessionStore 登录会话与Token黑名单
// 实现：infrastructure/persistence/redis(生产) 与 persistence/memory(测试、单机)
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, userID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}
