package market

import (
	"sync"
	"time"
)

// acquirePollInterval is how long a blocked Acquire sleeps between attempts.
const acquirePollInterval = 100 * time.Millisecond

// TokenBucket is an admission-control limiter bounding the sustained outbound
// call rate to refillRate per second with a burst allowance of capacity
// tokens. Safe for concurrent use; a single mutex guards the balance.
//
// No FIFO queue is maintained: tokens go to whichever goroutine next holds
// the lock when enough balance exists, so starvation under sustained
// contention is possible and accepted.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	clock      func() time.Time
}

// NewTokenBucket returns a full bucket refilling at ratePerSecond up to burst.
func NewTokenBucket(ratePerSecond, burst float64) *TokenBucket {
	b := &TokenBucket{
		capacity:   burst,
		refillRate: ratePerSecond,
		tokens:     burst,
		clock:      time.Now,
	}
	b.lastRefill = b.clock()
	return b
}

// Acquire blocks until cost tokens are available or timeout elapses,
// polling at a fixed interval. Returns false on timeout with no side
// effects. A cost greater than the bucket capacity can never be satisfied
// and will always run out the timeout.
func (b *TokenBucket) Acquire(cost float64, timeout time.Duration) bool {
	start := b.now()

	for {
		if b.TryAcquire(cost) {
			return true
		}

		if b.now().Sub(start) >= timeout {
			return false
		}

		time.Sleep(acquirePollInterval)
	}
}

// TryAcquire deducts cost tokens if available, without blocking.
func (b *TokenBucket) TryAcquire(cost float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= cost {
		b.tokens -= cost
		return true
	}
	return false
}

// Available returns the current token balance after applying any pending
// refill.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens
}

// refill adds elapsed-time-proportional tokens, capped at capacity.
// Caller must hold b.mu.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	b.lastRefill = now
}

func (b *TokenBucket) now() time.Time {
	if b.clock != nil {
		return b.clock()
	}
	return time.Now()
}
