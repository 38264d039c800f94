package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDoSucceedsAfterFailures(t *testing.T) {
	p := New(3, time.Millisecond)
	calls := 0

	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	p := New(2, time.Millisecond)
	calls := 0

	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errFlaky
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errFlaky)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("no such user")
	p := New(5, time.Millisecond, WithPermanent(func(err error) bool {
		return errors.Is(err, permanent)
	}))
	calls := 0

	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoHonoursCancellation(t *testing.T) {
	p := New(10, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(context.Context, int) error {
			calls++
			return errFlaky
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errFlaky)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestNewClampsAttempts(t *testing.T) {
	assert.Equal(t, 1, New(0, 0).Attempts())
	assert.Equal(t, 4, New(4, 0).Attempts())
}

func TestDelayIsCapped(t *testing.T) {
	p := New(4, 5*time.Millisecond, WithMaxDelay(5*time.Millisecond))
	start := time.Now()
	_ = p.Do(context.Background(), func(context.Context, int) error { return errFlaky })
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
