package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rohmanhakim/paper-review/pkg/timeutil"
)

// RateLimiter paces requests per host.
// Responsibilities:
// - Bookkeep each hostname's last fetch timestamp
// - Grow a per-host delay while the host keeps answering 429/5xx
// - Block callers until the host may be contacted again
type RateLimiter interface {
	Wait(ctx context.Context, host string) error
	MarkLastFetchAsNow(host string)
	Backoff(host string)
	ResetBackoff(host string)
	ResolveDelay(host string) time.Duration
}

type HostRateLimiter struct {
	mu           sync.Mutex
	baseDelay    time.Duration
	jitter       time.Duration
	backoffParam timeutil.BackoffParam
	hostTimings  map[string]hostTiming
	rng          *rand.Rand
}

func NewHostRateLimiter(
	baseDelay time.Duration,
	jitter time.Duration,
	randomSeed int64,
	backoffParam timeutil.BackoffParam,
) *HostRateLimiter {
	return &HostRateLimiter{
		baseDelay:    baseDelay,
		jitter:       jitter,
		backoffParam: backoffParam,
		hostTimings:  make(map[string]hostTiming),
		rng:          rand.New(rand.NewSource(randomSeed)),
	}
}

// Wait blocks until host may be fetched again or ctx is done.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	return timeutil.SleepContext(ctx, r.ResolveDelay(host))
}

func (r *HostRateLimiter) MarkLastFetchAsNow(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	timing.lastFetchAt = time.Now()
	r.hostTimings[host] = timing
}

// Backoff grows the delay of host exponentially, capped by the
// configured maximum.
func (r *HostRateLimiter) Backoff(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	if timing.policy == nil {
		timing.policy = r.newPolicy()
	}
	timing.backoffCount++
	timing.backoffDelay = timing.policy.NextBackOff()
	r.hostTimings[host] = timing
}

// ResetBackoff clears the backoff state after a successful request.
func (r *HostRateLimiter) ResetBackoff(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing, exists := r.hostTimings[host]
	if !exists {
		return
	}
	if timing.policy != nil {
		timing.policy.Reset()
	}
	timing.backoffCount = 0
	timing.backoffDelay = 0
	r.hostTimings[host] = timing
}

// ResolveDelay returns how long a caller still has to wait before
// contacting host: max(baseDelay, backoffDelay) + jitter, minus the time
// elapsed since the last fetch. Unknown hosts need no delay.
func (r *HostRateLimiter) ResolveDelay(host string) time.Duration {
	r.mu.Lock()
	timing, exists := r.hostTimings[host]
	base := r.baseDelay
	var jitter time.Duration
	if r.jitter > 0 {
		jitter = time.Duration(r.rng.Int63n(int64(r.jitter)))
	}
	r.mu.Unlock()

	if !exists {
		return 0
	}

	finalDelay := timeutil.MaxDuration([]time.Duration{base, timing.backoffDelay}) + jitter
	elapsed := time.Since(timing.lastFetchAt)
	if elapsed < finalDelay {
		return finalDelay - elapsed
	}
	return 0
}

// HostTimings returns a copy of the per-host state.
func (r *HostRateLimiter) HostTimings() map[string]hostTiming {
	r.mu.Lock()
	defer r.mu.Unlock()

	copyMap := make(map[string]hostTiming, len(r.hostTimings))
	for k, v := range r.hostTimings {
		copyMap[k] = v
	}
	return copyMap
}

func (r *HostRateLimiter) newPolicy() *backoff.ExponentialBackOff {
	return r.backoffParam.NewExponentialBackOff(0)
}
