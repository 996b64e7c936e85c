package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// 需要本地Redis，未设置LICORERIA_TEST_REDIS_ADDR时跳过
func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	addr := os.Getenv("LICORERIA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LICORERIA_TEST_REDIS_ADDR未设置，跳过Redis测试")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return NewSessionStore(client)
}

func TestSessionStore_Session(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, 9, map[string]interface{}{"username": "ana", "role": "vendedor"}, time.Minute))

	data, err := store.GetSession(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "ana", data["username"])

	require.NoError(t, store.DeleteSession(ctx, 9))
	_, err = store.GetSession(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSessionStore_Blacklist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddToBlacklist(ctx, "tok", time.Minute))
	ok, err = store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
}
