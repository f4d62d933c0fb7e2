package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("x"), 0))

	now = now.Add(59 * time.Second)
	_, err := m.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	now = now.Add(24 * time.Hour)
	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'z'

	got, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestNewRedisStore_Pings(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRedisStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	raw, err := mr.Get("portal:k")
	require.NoError(t, err)
	assert.Equal(t, "v", raw)
	assert.False(t, mr.Exists("k"))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, s.Set(ctx, "forever", []byte("x"), 0))
	require.NoError(t, s.Set(ctx, "negative", []byte("y"), -time.Second))

	assert.Equal(t, time.Minute, mr.TTL("portal:k"))
	assert.Zero(t, mr.TTL("portal:forever"))
	assert.Zero(t, mr.TTL("portal:negative"))

	mr.FastForward(59 * time.Second)
	_, err := s.Get(ctx, "k")
	assert.NoError(t, err)

	mr.FastForward(time.Second)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	mr.FastForward(24 * time.Hour)
	_, err = s.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	defer s.Close()
	mr.Close()

	_, err = s.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Error(t, s.Set(ctx, "k", []byte("v"), time.Minute))
}
