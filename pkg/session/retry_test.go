package session

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	boom := stderrors.New("connection refused")

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return transient(boom)
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up with the last error", func(t *testing.T) {
		calls := 0
		err := retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return transient(boom)
		})
		assert.Same(t, boom, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		err := retry(ctx, 5, time.Millisecond, func() error {
			calls++
			return boom
		})
		assert.Same(t, boom, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := retry(ctx, 3, time.Hour, func() error { return transient(boom) })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_ = retry(ctx, 0, time.Millisecond, func() error { calls++; return nil })
		assert.Equal(t, 1, calls)
	})
}
