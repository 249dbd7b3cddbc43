package timeutil

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BackoffParam describes an exponential delay curve: the first delay, the
// growth factor between attempts and the ceiling. The same curve drives
// request retries and per-host cool-down after 429 and 5xx responses.
type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(
	initialDuration time.Duration,
	multiplier float64,
	maxDuration time.Duration,
) BackoffParam {
	return BackoffParam{
		initialDuration: initialDuration,
		multiplier:      multiplier,
		maxDuration:     maxDuration,
	}
}

func (b BackoffParam) InitialDuration() time.Duration { return b.initialDuration }

func (b BackoffParam) Multiplier() float64 { return b.multiplier }

func (b BackoffParam) MaxDuration() time.Duration { return b.maxDuration }

// NewExponentialBackOff returns a reset policy following the curve with the
// given jitter factor. It never gives up on elapsed time; callers bound it
// by attempts.
func (b BackoffParam) NewExponentialBackOff(randomization float64) *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.initialDuration
	policy.Multiplier = b.multiplier
	policy.MaxInterval = b.maxDuration
	policy.RandomizationFactor = randomization
	policy.MaxElapsedTime = 0
	policy.Reset()
	return policy
}
