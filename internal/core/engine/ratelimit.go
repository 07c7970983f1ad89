package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidConfiguration reports unusable rate limiter parameters.
var ErrInvalidConfiguration = errors.New("invalid rate limiter configuration")

// RateLimiter admits at most maxCalls calls within any trailing window of
// period. Admissions are recorded in a sliding-window log of timestamps,
// oldest first, pruned lazily before each decision. Safe for concurrent
// callers; the critical section is short and bounded by the window size.
type RateLimiter struct {
	// Clock and Sleep may be replaced in tests for deterministic timing.
	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	maxCalls int
	period   time.Duration

	mu    sync.Mutex
	calls []time.Time
}

// NewRateLimiter validates the window parameters and returns a limiter.
func NewRateLimiter(maxCalls int, period time.Duration) (*RateLimiter, error) {
	if maxCalls <= 0 {
		return nil, fmt.Errorf("%w: max calls must be positive, got %d", ErrInvalidConfiguration, maxCalls)
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %s", ErrInvalidConfiguration, period)
	}

	return &RateLimiter{maxCalls: maxCalls, period: period}, nil
}

// Acquire blocks until admitting one more call keeps the trailing window
// within its ceiling, then records the call and returns. It returns early
// only when ctx is done.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return errors.New("rate limiter is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.calls) < l.maxCalls {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}

		delay := l.calls[0].Add(l.period).Sub(now)
		l.mu.Unlock()

		if delay < 0 {
			delay = 0
		}
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// MaxCalls returns the admission ceiling per window.
func (l *RateLimiter) MaxCalls() int {
	return l.maxCalls
}

// Period returns the trailing window duration.
func (l *RateLimiter) Period() time.Duration {
	return l.period
}

// prune drops timestamps that fell out of the trailing window. Entries are
// oldest first, so this is a prefix trim. Caller holds the lock.
func (l *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.period)
	idx := 0
	for idx < len(l.calls) && !l.calls[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.calls = append(l.calls[:0], l.calls[idx:]...)
	}
}

func (l *RateLimiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
