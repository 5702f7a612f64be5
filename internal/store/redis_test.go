package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

func newTestStore(t *testing.T) (*store.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.NewRedis(client), mr
}

func TestSetGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Hour))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "absent")
	assert.True(t, errors.Is(err, store.ErrKeyNotFound))
}

func TestTTLExpiry(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("k"))

	mr.FastForward(time.Hour + time.Second)

	_, err := s.Get(ctx, "k")
	assert.True(t, errors.Is(err, store.ErrKeyNotFound))
}

func TestDel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Hour))
	require.NoError(t, s.Del(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.True(t, errors.Is(err, store.ErrKeyNotFound))
}

func TestHashOps(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.HSet(ctx, "h", "name", "Maria"))
	require.NoError(t, s.HSet(ctx, "h", "phone", "555"))

	fields, err := s.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Maria", "phone": "555"}, fields)
}

func TestHGetAllMissingKeyIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	fields, err := s.HGetAll(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, fields)
}
