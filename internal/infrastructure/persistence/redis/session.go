package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/licoreria/internal/domain/user"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// SessionStore 基于Redis的会话存储
// Key设计：licoreria:session:{user_id}、licoreria:blacklist:{token}
type SessionStore struct {
	client *redis.Client
}

var _ user.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("licoreria:session:%d", userID)
}

func blacklistKey(token string) string {
	return "licoreria:blacklist:" + token
}

// SaveSession 保存用户会话（登录时间、角色等），过期时间与Refresh Token一致
// HSet与Expire在同一个Pipeline中提交
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(userID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, sessionData)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.WithDetail(apperrors.ErrRedisError, "保存会话失败", err)
	}
	return nil
}

// GetSession 获取用户会话
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.WithDetail(apperrors.ErrRedisError, "获取会话失败", err)
	}

	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	return result, nil
}

// DeleteSession 删除用户会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.WithDetail(apperrors.ErrRedisError, "删除会话失败", err)
	}

	return nil
}

// AddToBlacklist 将Token加入黑名单（登出、强制下线）
// ttl取Access Token有效期，过期后Key自动删除
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.WithDetail(apperrors.ErrRedisError, "添加Token到黑名单失败", err)
	}

	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.WithDetail(apperrors.ErrRedisError, "检查黑名单失败", err)
	}

	return exists > 0, nil
}
