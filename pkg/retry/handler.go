package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/rohmanhakim/paper-review/pkg/failure"
)

// Retry executes fn until it succeeds, returns a non-retryable error,
// MaxAttempts is reached or ctx is done. Delays between attempts grow
// exponentially as described by BackoffParam.
func Retry[T any](
	ctx context.Context,
	retryParam RetryParam,
	fn func() (T, failure.ClassifiedError),
) Result[T] {
	if retryParam.MaxAttempts < 1 {
		return Result[T]{
			err: &RetryError{
				Message:   "max attempt cannot be 0",
				Cause:     ErrZeroAttempt,
				Retryable: false,
			},
		}
	}

	policy := newBackOff(retryParam)
	bounded := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retryParam.MaxAttempts-1)), ctx)

	attempts := 0
	var lastErr failure.ClassifiedError
	operation := func() (T, error) {
		attempts++
		value, err := fn()
		if err == nil {
			return value, nil
		}
		lastErr = err
		if !isErrorRetryable(err) {
			return value, backoff.Permanent(err)
		}
		return value, err
	}

	value, err := backoff.RetryWithData(operation, bounded)
	if err == nil {
		return Result[T]{value: value, attempts: attempts}
	}

	var zero T
	if lastErr != nil && !isErrorRetryable(lastErr) {
		return Result[T]{value: zero, err: lastErr, attempts: attempts}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Result[T]{
			value: zero,
			err: &RetryError{
				Message:   fmt.Sprintf("stopped after %d attempts: %v", attempts, err),
				Cause:     ErrCanceled,
				Retryable: false,
				Last:      lastErr,
			},
			attempts: attempts,
		}
	}
	return Result[T]{
		value: zero,
		err: &RetryError{
			Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", attempts, lastErr),
			Cause:     ErrExhaustedAttempts,
			Retryable: true,
			Last:      lastErr,
		},
		attempts: attempts,
	}
}

func newBackOff(retryParam RetryParam) *backoff.ExponentialBackOff {
	return retryParam.BackoffParam.NewExponentialBackOff(retryParam.RandomizationFactor)
}

// isErrorRetryable defaults to retrying errors that do not say otherwise.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}
	return err.Severity() != failure.SeverityFatal
}
