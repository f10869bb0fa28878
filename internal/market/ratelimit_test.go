package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenBucketBurstThenExhausted(t *testing.T) {
	clock := newFakeClock()
	bucket := NewTokenBucket(5, 10)
	bucket.clock = clock.Now
	bucket.lastRefill = clock.Now()

	for i := 0; i < 10; i++ {
		require.True(t, bucket.TryAcquire(1), "acquire %d should succeed within burst", i+1)
	}
	require.False(t, bucket.TryAcquire(1), "eleventh acquire with no elapsed time must fail")
}

func TestTokenBucketAcquireTimesOutWhenEmpty(t *testing.T) {
	bucket := NewTokenBucket(0.001, 1)
	require.True(t, bucket.TryAcquire(1))

	start := time.Now()
	ok := bucket.Acquire(1, 150*time.Millisecond)
	elapsed := time.Since(start)

	require.False(t, ok)
	require.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
}

func TestTokenBucketRefill(t *testing.T) {
	clock := newFakeClock()
	bucket := NewTokenBucket(2, 10)
	bucket.clock = clock.Now
	bucket.lastRefill = clock.Now()

	for i := 0; i < 10; i++ {
		require.True(t, bucket.TryAcquire(1))
	}
	require.False(t, bucket.TryAcquire(1))

	// 2 tokens/s for 1.5s yields 3 tokens.
	clock.Advance(1500 * time.Millisecond)
	require.InDelta(t, 3.0, bucket.Available(), 1e-9)

	require.True(t, bucket.TryAcquire(3))
	require.False(t, bucket.TryAcquire(0.5))
}

func TestTokenBucketRefillCapsAtCapacity(t *testing.T) {
	clock := newFakeClock()
	bucket := NewTokenBucket(5, 10)
	bucket.clock = clock.Now
	bucket.lastRefill = clock.Now()

	require.True(t, bucket.TryAcquire(4))

	clock.Advance(time.Hour)
	require.InDelta(t, 10.0, bucket.Available(), 1e-9)
}

func TestTokenBucketFractionalCost(t *testing.T) {
	clock := newFakeClock()
	bucket := NewTokenBucket(1, 1)
	bucket.clock = clock.Now
	bucket.lastRefill = clock.Now()

	require.True(t, bucket.TryAcquire(0.5))
	require.True(t, bucket.TryAcquire(0.5))
	require.False(t, bucket.TryAcquire(0.5))

	clock.Advance(500 * time.Millisecond)
	require.True(t, bucket.TryAcquire(0.5))
}

func TestTokenBucketCostAboveCapacityNeverSatisfied(t *testing.T) {
	bucket := NewTokenBucket(100, 2)
	require.False(t, bucket.Acquire(3, 50*time.Millisecond))
}
