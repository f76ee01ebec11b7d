package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kpsbusiness/paywall/services/access-service/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return session.NewRedisStore(client, ttl), mr
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	s := session.New(time.Now())
	s.Grant("ORDER123", time.Now())
	require.NoError(t, store.Put(ctx, "sid", s))

	assert.True(t, mr.Exists("session:sid"))
	assert.Equal(t, time.Hour, mr.TTL("session:sid"))

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, "ORDER123", got.OrderID)
}

func TestRedisStore_MissingAndExpired(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "sid", session.New(time.Now())))
	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRedisStore_Destroy(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	require.NoError(t, store.Put(ctx, "sid", session.New(time.Now())))
	require.NoError(t, store.Destroy(ctx, "sid"))
	require.NoError(t, store.Destroy(ctx, "sid"))
	assert.False(t, mr.Exists("session:sid"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)
	mr.Close()

	_, err := store.Get(ctx, "sid")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrSessionNotFound)
}
