package retry

import (
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/timeutil"
)

// RetryParam holds the parameters for retry logic.
// These parameters are passed from outside (e.g., config) and should not
// be known by the retry handler internally.
type RetryParam struct {
	MaxAttempts int
	// RandomizationFactor spreads each delay over
	// [d*(1-factor), d*(1+factor)]. Zero disables jitter.
	RandomizationFactor float64
	BackoffParam        timeutil.BackoffParam
}

func NewRetryParam(
	maxAttempts int,
	randomizationFactor float64,
	backoffParam timeutil.BackoffParam,
) RetryParam {
	return RetryParam{
		MaxAttempts:         maxAttempts,
		RandomizationFactor: randomizationFactor,
		BackoffParam:        backoffParam,
	}
}

// Result carries the outcome of a retried operation.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

func (r Result[T]) Attempts() int {
	return r.attempts
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
