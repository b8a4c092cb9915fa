package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration, clock *time.Time) *Registry {
	return NewRegistry(func(id string) *Controller {
		return New(id, &fakeAuthenticator{}, WithClock(func() time.Time { return *clock }))
	}, ttl, nil)
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	now := testNow
	r := newTestRegistry(time.Minute, &now)

	c := r.Create()
	require.NotEmpty(t, c.ID())
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	r.Delete(c.ID())
	assert.Equal(t, 0, r.Len())
	_, err = r.Get(c.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	now := testNow
	r := newTestRegistry(time.Minute, &now)

	a, b := r.Create(), r.Create()
	require.NotEqual(t, a.ID(), b.ID())

	a.AddToCart(bike)
	assert.Equal(t, 1, a.ItemCount())
	assert.Equal(t, 0, b.ItemCount())
}

func TestRegistry_Evict(t *testing.T) {
	now := testNow
	r := newTestRegistry(time.Minute, &now)

	idle := r.Create()
	now = now.Add(50 * time.Second)
	busy := r.Create()
	now = now.Add(30 * time.Second)
	busy.OpenCart()

	assert.Equal(t, 1, r.Evict(now))
	_, err := r.Get(idle.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(busy.ID())
	assert.NoError(t, err)

	t.Run("zero ttl keeps everything", func(t *testing.T) {
		keep := newTestRegistry(0, &now)
		keep.Create()
		assert.Equal(t, 0, keep.Evict(now.Add(24*time.Hour)))
		assert.Equal(t, 1, keep.Len())
	})
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	now := testNow
	r := newTestRegistry(time.Minute, &now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRegistry_ReadsKeepSessionAlive(t *testing.T) {
	now := testNow
	r := newTestRegistry(30*time.Minute, &now)

	c := r.Create()
	c.AddToCart(bike)

	for i := 0; i < 5; i++ {
		now = now.Add(5 * time.Minute)
		c.Touch()
		_ = c.Snapshot()
		_ = c.Cart()
	}

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 0, r.Evict(now), "last request was 10m ago")
	got, err := r.Get(c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemCount())

	now = now.Add(21 * time.Minute)
	assert.Equal(t, 1, r.Evict(now))
	assert.Equal(t, 0, r.Len())
}
