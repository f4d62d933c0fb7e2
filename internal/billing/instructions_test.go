package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cakrabuana/payment-portal/internal/cache"
)

type countingSource struct {
	calls   int
	methods []InstructionMethod
	err     error
}

func (s *countingSource) Instructions(context.Context, string) ([]InstructionMethod, error) {
	s.calls++
	return s.methods, s.err
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestInstructionCache_ReadsThrough(t *testing.T) {
	src := &countingSource{methods: []InstructionMethod{{ID: 1, Name: "ATM"}}}
	c := NewInstructionCache(src, cache.NewMemoryStore(), time.Minute, nil)

	for i := 0; i < 3; i++ {
		got, err := c.Get(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "ATM", got[0].Name)
	}
	assert.Equal(t, 1, src.calls)
}

func TestInstructionCache_StoreFailureFallsBack(t *testing.T) {
	src := &countingSource{methods: []InstructionMethod{{ID: 2, Name: "Mobile Banking"}}}
	c := NewInstructionCache(src, brokenStore{}, time.Minute, nil)

	got, err := c.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, _ = c.Get(context.Background(), "tok")
	assert.Equal(t, 2, src.calls)
}

func TestInstructionCache_SourceError(t *testing.T) {
	src := &countingSource{err: ErrUnauthorized}
	c := NewInstructionCache(src, cache.NewMemoryStore(), time.Minute, nil)

	_, err := c.Get(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestInstructionCache_OnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	src := &countingSource{methods: []InstructionMethod{{ID: 1, Name: "ATM", Details: []InstructionStep{{Step: "1", Value: "Masukkan kartu"}}}}}
	c := NewInstructionCache(src, store, 10*time.Minute, nil)

	first, err := c.Get(context.Background(), "tok")
	require.NoError(t, err)
	second, err := c.Get(context.Background(), "other-token")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)

	assert.True(t, mr.Exists("portal:"+instructionsKey))
	assert.Equal(t, 10*time.Minute, mr.TTL("portal:"+instructionsKey))

	mr.FastForward(10 * time.Minute)
	_, err = c.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestInstructionCache_DiscardsCorruptRedisEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, mr.Set("portal:"+instructionsKey, "{not json"))

	src := &countingSource{methods: []InstructionMethod{{ID: 3, Name: "Teller"}}}
	got, err := NewInstructionCache(src, store, time.Minute, nil).Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Teller", got[0].Name)
	assert.Equal(t, 1, src.calls)
}
