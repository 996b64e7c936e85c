package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/user"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// SessionStore 内存会话存储，redis.enabled=false时使用
// 过期数据在读取时惰性清理
type SessionStore struct {
	mu        sync.Mutex
	now       func() time.Time
	sessions  map[uint]sessionEntry
	blacklist map[string]time.Time
}

type sessionEntry struct {
	data      map[string]string
	expiresAt time.Time
}

var _ user.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建内存会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		now:       time.Now,
		sessions:  map[uint]sessionEntry{},
		blacklist: map[string]time.Time{},
	}
}

func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	data := make(map[string]string, len(sessionData))
	for k, v := range sessionData {
		data[k] = fmt.Sprint(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sessionEntry{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

// GetSession 会话不存在或已过期返回ErrUnauthorized，与Redis实现一致
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[userID]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, userID)
		return nil, apperrors.ErrUnauthorized
	}
	out := make(map[string]string, len(entry.data))
	for k, v := range entry.data {
		out[k] = v
	}
	return out, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = s.now().Add(ttl)
	return nil
}

func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.blacklist[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.blacklist, token)
		return false, nil
	}
	return true, nil
}
