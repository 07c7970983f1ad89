package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock shared by Clock and Sleep hooks so
// limiter behavior is deterministic.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}

func newTestLimiter(t *testing.T, maxCalls int, period time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()

	limiter, err := NewRateLimiter(maxCalls, period)
	require.NoError(t, err)

	clock := newFakeClock()
	limiter.Clock = clock.Now
	limiter.Sleep = clock.Sleep
	return limiter, clock
}

func TestNewRateLimiterRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name     string
		maxCalls int
		period   time.Duration
	}{
		{name: "zero max calls", maxCalls: 0, period: time.Minute},
		{name: "negative max calls", maxCalls: -1, period: time.Minute},
		{name: "zero period", maxCalls: 5, period: 0},
		{name: "negative period", maxCalls: 5, period: -time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			limiter, err := NewRateLimiter(tc.maxCalls, tc.period)
			require.Nil(t, limiter)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestRateLimiterAdmitsUpToCeilingWithoutDelay(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	limiter.Sleep = func(ctx context.Context, d time.Duration) error {
		t.Fatalf("unexpected sleep of %s", d)
		return nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}
}

func TestRateLimiterDelaysUntilOldestCallExpires(t *testing.T) {
	limiter, clock := newTestLimiter(t, 2, time.Minute)

	var slept []time.Duration
	limiter.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return clock.Sleep(ctx, d)
	}

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))
	clock.Advance(10 * time.Second)
	require.NoError(t, limiter.Acquire(ctx))

	// Window is full. The third call must wait until the first admission
	// leaves the trailing window, 50 seconds from now.
	require.NoError(t, limiter.Acquire(ctx))
	require.Equal(t, []time.Duration{50 * time.Second}, slept)
}

func TestRateLimiterWindowNeverExceedsCeiling(t *testing.T) {
	const (
		maxCalls = 5
		period   = time.Minute
	)

	limiter, clock := newTestLimiter(t, maxCalls, period)

	ctx := context.Background()
	var admissions []time.Time
	for i := 0; i < 40; i++ {
		require.NoError(t, limiter.Acquire(ctx))
		admissions = append(admissions, clock.Now())
		clock.Advance(3 * time.Second)
	}

	// In any trailing window of the period, at most maxCalls admissions.
	for i := range admissions {
		count := 0
		for j := range admissions {
			if !admissions[j].Before(admissions[i].Add(-period)) && !admissions[j].After(admissions[i]) {
				count++
			}
		}
		require.LessOrEqual(t, count, maxCalls, "window ending at admission %d", i)
	}
}

func TestRateLimiterReleasesCapacityAfterPeriod(t *testing.T) {
	limiter, clock := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))

	clock.Advance(time.Minute + time.Second)

	limiter.Sleep = func(ctx context.Context, d time.Duration) error {
		t.Fatalf("unexpected sleep of %s", d)
		return nil
	}
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
}

func TestRateLimiterAcquireHonorsCancellation(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, limiter.Acquire(ctx))

	limiter.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := limiter.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiterConcurrentAcquire(t *testing.T) {
	limiter, err := NewRateLimiter(20, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- limiter.Acquire(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
