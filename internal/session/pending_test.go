package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/clock"
)

func TestPending(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		p := resolved(7, nil)
		v, err := p.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		p.Cancel()
	})

	t.Run("run returns value", func(t *testing.T) {
		p := run(context.Background(), func(context.Context) (string, error) { return "done", nil })
		v, err := p.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "done", v)
	})

	t.Run("cancel reaches the operation", func(t *testing.T) {
		p := run(context.Background(), func(ctx context.Context) (int, error) {
			return 0, clock.Sleep(ctx, time.Hour)
		})
		p.Cancel()
		<-p.Done()
		_, err := p.Wait(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("abandoned wait does not cancel", func(t *testing.T) {
		release := make(chan struct{})
		p := run(context.Background(), func(ctx context.Context) (int, error) {
			<-release
			return 1, ctx.Err()
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Wait(ctx)
		assert.True(t, errors.Is(err, context.Canceled))

		close(release)
		v, err := p.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})
}
