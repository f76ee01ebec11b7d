package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStore_PutGetDestroy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := New(time.Now())
	s.Grant("ORDER123", time.Now())
	require.NoError(t, store.Put(ctx, "sid", s))

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, got.HasAccess())
	assert.Equal(t, "ORDER123", got.OrderID)

	require.NoError(t, store.Destroy(ctx, "sid"))
	require.NoError(t, store.Destroy(ctx, "sid"))
	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()

	s := New(time.Now())
	require.NoError(t, store.Put(ctx, "sid", s))
	s.Paid = true

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, got.Paid)

	got.Paid = true
	again, _ := store.Get(ctx, "sid")
	assert.False(t, again.Paid)
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newMemoryStore(24*time.Hour, 0, clock.Now)

	require.NoError(t, store.Put(ctx, "sid", New(clock.Now())))

	clock.Advance(23 * time.Hour)
	_, err := store.Get(ctx, "sid")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_PutRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newMemoryStore(time.Hour, 0, clock.Now)

	require.NoError(t, store.Put(ctx, "sid", New(clock.Now())))
	clock.Advance(50 * time.Minute)
	require.NoError(t, store.Put(ctx, "sid", New(clock.Now())))
	clock.Advance(50 * time.Minute)

	_, err := store.Get(ctx, "sid")
	assert.NoError(t, err)
}

func TestMemoryStore_SweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newMemoryStore(time.Hour, 0, clock.Now)

	require.NoError(t, store.Put(ctx, "old", New(clock.Now())))
	clock.Advance(30 * time.Minute)
	require.NoError(t, store.Put(ctx, "new", New(clock.Now())))
	clock.Advance(45 * time.Minute)

	store.sweep()
	assert.Equal(t, 1, store.Len())
}

func TestSession_GrantNeverUnpays(t *testing.T) {
	s := New(time.Now())
	assert.False(t, s.HasAccess())

	s.Grant("A", time.Now())
	s.Grant("B", time.Now())
	assert.True(t, s.HasAccess())
	assert.Equal(t, "B", s.OrderID)
	require.NotNil(t, s.PaidAt)

	var nilSession *Session
	assert.False(t, nilSession.HasAccess())
}
