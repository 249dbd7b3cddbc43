package limiter

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// per-host pacing state
type hostTiming struct {
	lastFetchAt  time.Time
	backoffDelay time.Duration
	backoffCount int
	policy       *backoff.ExponentialBackOff
}

func (h hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}

func (h hostTiming) BackoffDelay() time.Duration {
	return h.backoffDelay
}

func (h hostTiming) BackoffCount() int {
	return h.backoffCount
}
