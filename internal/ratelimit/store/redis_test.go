package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	config := DefaultRedisConfig()
	config.URL = "redis://" + mr.Addr()

	s, err := NewRedisStore(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	config := DefaultRedisConfig()
	config.URL = "http://not-redis"

	_, err := NewRedisStore(config)
	assert.Error(t, err)
}

func TestRedisStore_Increment(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	n, err := s.Increment(ctx, "ratelimit:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Increment(ctx, "ratelimit:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := mr.Get("ratelimit:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRedisStore_ExpireAndTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, err := s.Increment(ctx, "k")
	require.NoError(t, err)

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, NoExpiry, ttl)

	require.NoError(t, s.Expire(ctx, "k", 1500*time.Millisecond))

	ttl, err = s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, ttl)

	mr.FastForward(2 * time.Second)

	ttl, err = s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, Missing, ttl)
	assert.False(t, mr.Exists("k"))
}

func TestRedisStore_SetWithExpiryAndDelete(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetWithExpiry(ctx, "auth:lock:alice::10.0.0.1", "1", time.Minute))
	assert.True(t, mr.Exists("auth:lock:alice::10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL("auth:lock:alice::10.0.0.1"))

	require.NoError(t, s.Delete(ctx, "auth:lock:alice::10.0.0.1"))
	assert.False(t, mr.Exists("auth:lock:alice::10.0.0.1"))

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete(ctx, "auth:lock:alice::10.0.0.1"))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	config := DefaultRedisConfig()
	config.URL = "redis://" + mr.Addr()
	config.Prefix = "gw:"

	s, err := NewRedisStore(config)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Increment(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, mr.Exists("gw:x"))
}

func TestRedisStore_ServerError(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.SetError("ERR injected")

	_, err := s.Increment(context.Background(), "k")
	assert.Error(t, err)

	_, err = s.TTL(context.Background(), "k")
	assert.Error(t, err)

	assert.Error(t, s.Ping(context.Background()))
}

func TestRedisStore_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &RedisStore{prefix: "test:"}

	_, err := s.Increment(ctx, "k")
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)

	err = s.Expire(ctx, "k", time.Second)
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = s.TTL(ctx, "k")
	assert.True(t, errors.Is(err, context.Canceled))

	err = s.SetWithExpiry(ctx, "k", "1", time.Second)
	assert.True(t, errors.Is(err, context.Canceled))

	err = s.Delete(ctx, "k")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRedisStore_CloseIdempotent(t *testing.T) {
	s, _ := newTestRedisStore(t)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestRedisStore_ClosedRejectsCalls(t *testing.T) {
	s, _ := newTestRedisStore(t)
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err := s.Increment(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Expire(ctx, "k", time.Second), ErrClosed)
	_, err = s.TTL(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.SetWithExpiry(ctx, "k", "1", time.Second), ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrClosed)
	assert.ErrorIs(t, s.Ping(ctx), ErrClosed)
}
