// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/live-poll/store"
)

// RetryPolicy bounds every store call made by the coordinator
type RetryPolicy struct {
	Timeout time.Duration // per attempt; 0 means no timeout
	Retries int           // extra attempts after the first failure
	Backoff time.Duration // delay before the first retry, doubled after each
}

type result[T any] struct {
	value T
	err   error
}

// call runs op until it succeeds, the attempts run out or ctx ends.
// Every failure is reported as store.ErrStoreUnavailable.
func call[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var err error
	backoff := p.Backoff

	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, unavailable(ctx.Err())
			case <-timer.C:
			}
			backoff *= 2
		}

		var value T
		value, err = attemptOnce(ctx, p.Timeout, op)
		if err == nil {
			return value, nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	return zero, unavailable(err)
}

// attemptOnce gives up at the deadline even if op ignores its context
func attemptOnce[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result[T], 1)
	go func() {
		value, err := op(ctx)
		done <- result[T]{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func unavailable(err error) error {
	if errors.Is(err, store.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
}
