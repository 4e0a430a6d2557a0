package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntilReturnsWhenReady(t *testing.T) {
	calls := 0
	err := WaitUntil(context.Background(), time.Millisecond, time.Second,
		func(context.Context) (bool, error) {
			calls++
			return calls >= 3, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitUntilTimesOut(t *testing.T) {
	err := WaitUntil(context.Background(), time.Millisecond, 10*time.Millisecond,
		func(context.Context) (bool, error) {
			return false, nil
		})
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestWaitUntilAbortsOnCheckError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := WaitUntil(context.Background(), time.Millisecond, time.Second,
		func(context.Context) (bool, error) {
			calls++
			return false, boom
		})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWaitUntilHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitUntil(ctx, 10*time.Millisecond, time.Second,
		func(context.Context) (bool, error) {
			return false, nil
		})
	assert.ErrorIs(t, err, context.Canceled)
}
