// Package guard bounds upstream calls with a deadline. The guarded call is
// raced against a timer; when the timer wins, the caller gets a
// distinguishable timeout error and stops waiting. The underlying operation
// is not forcibly aborted (cancellation is best-effort via the context).
package guard

import (
	"context"
	"errors"
	"strings"
	"time"
)

// TimeoutError marks a call cut off by WithTimeout. The message is chosen by
// the caller and is safe to surface in audit classification.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string { return e.Message }

// WithTimeout runs fn and waits at most timeout for its result. On deadline
// it returns a *TimeoutError carrying message; fn keeps running in its
// goroutine but nothing awaits it further. The context handed to fn is
// cancelled when the guard gives up, so cooperative callees can stop early.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, message string, fn func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	callCtx, cancel := context.WithCancel(ctx)
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		ch <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case out := <-ch:
		cancel()
		return out.value, out.err
	case <-timer.C:
		cancel()
		return zero, &TimeoutError{Message: message}
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}

// IsTimeout classifies err as a deadline failure: a guard TimeoutError, a
// context deadline, or any error whose message mentions a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
