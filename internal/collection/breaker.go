package collection

import (
	"sync"
	"time"
)

// circuitBreaker suppresses background refresh attempts after repeated
// failures, for the duration of a cool-down window. It is deliberately
// simpler than a full closed/open/half-open state machine: open-ness is
// recalculated from elapsed time on every check, so a long idle period after
// tripping heals the breaker without a successful probe. State is in-memory
// only — it is operational backpressure, not durable state.
type circuitBreaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
}

func newCircuitBreaker(threshold int, cooldown time.Duration, now func() time.Time) *circuitBreaker {
	if now == nil {
		now = time.Now
	}
	return &circuitBreaker{threshold: threshold, cooldown: cooldown, now: now}
}

// isOpen reports whether refresh attempts should be suppressed right now.
func (b *circuitBreaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold && b.now().Sub(b.lastFailure) < b.cooldown
}

// recordFailure increments the consecutive-failure count and stamps the
// failure time.
func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
}

// reset clears the failure count. Called on any successful refresh.
func (b *circuitBreaker) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// failureCount returns the current consecutive-failure count.
func (b *circuitBreaker) failureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
