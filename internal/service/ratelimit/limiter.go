// Package ratelimit implements the per-client token buckets behind the
// dashboard's interactive endpoints. Keys combine the client address
// with the action, so one chatty client cannot starve the rest.
package ratelimit

import (
	"sync"
	"time"
)

// pruneAfter is how long a bucket may sit untouched before it is
// dropped. Buckets are keyed by client address, so without pruning the
// map grows with every address ever seen.
const pruneAfter = 15 * time.Minute

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter hands out tokens from one bucket per key. A bucket starts
// full, drains one token per allowed call, and refills continuously at
// the caller's rate up to the caller's capacity.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	lastPrune time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow consumes one token from key's bucket if one is available.
// capacity bounds the burst and refillPerSec the sustained rate; both
// are fixed per action at the call site.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * refillPerSec
		if b.tokens > capacity {
			b.tokens = capacity
		}
	}
	b.last = now

	l.maybePrune(now)

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// maybePrune drops idle buckets. Runs at most once per pruneAfter,
// under the caller's lock.
func (l *Limiter) maybePrune(now time.Time) {
	if now.Sub(l.lastPrune) < pruneAfter {
		return
	}
	l.lastPrune = now

	for key, b := range l.buckets {
		if now.Sub(b.last) >= pruneAfter {
			delete(l.buckets, key)
		}
	}
}
