package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrWaitTimeout is returned when a readiness condition is not met within
// the configured window.
var ErrWaitTimeout = errors.New("condition not met before timeout")

// WaitUntil polls check on the given interval until it reports done, fails,
// or the timeout elapses. A check returning (false, nil) means "not ready
// yet"; returning an error aborts the wait immediately.
//
// This primitive replaces the fixed-duration sleeps the flows previously
// used after triggering asynchronous external actions.
func WaitUntil(ctx context.Context, interval, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w (after %s)", ErrWaitTimeout, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
