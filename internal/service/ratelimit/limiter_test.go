package ratelimit

import (
	"testing"
	"time"
)

func TestAllowDrainsBurst(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1:trend", 3, 1) {
			t.Fatalf("call %d: expected allow", i)
		}
	}
	if l.Allow("10.0.0.1:trend", 3, 1) {
		t.Fatal("expected burst to be exhausted")
	}
}

func TestAllowRefillsOverTime(t *testing.T) {
	now := time.Now()
	l := New()
	l.now = func() time.Time { return now }

	if !l.Allow("k", 1, 0.1) {
		t.Fatal("first call should pass")
	}
	if l.Allow("k", 1, 0.1) {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(10 * time.Second)
	if !l.Allow("k", 1, 0.1) {
		t.Fatal("expected one token after the refill interval")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()

	if !l.Allow("a:refresh", 1, 0) {
		t.Fatal("first key should pass")
	}
	if l.Allow("a:refresh", 1, 0) {
		t.Fatal("first key should be drained")
	}
	if !l.Allow("b:refresh", 1, 0) {
		t.Fatal("second key should have its own bucket")
	}
}

func TestPruneDropsIdleBuckets(t *testing.T) {
	now := time.Now()
	l := New()
	l.now = func() time.Time { return now }

	l.Allow("idle", 1, 0)
	now = now.Add(pruneAfter + time.Minute)
	l.Allow("active", 1, 0)

	l.mu.Lock()
	_, idleKept := l.buckets["idle"]
	_, activeKept := l.buckets["active"]
	l.mu.Unlock()

	if idleKept {
		t.Fatal("idle bucket should have been pruned")
	}
	if !activeKept {
		t.Fatal("active bucket should survive the prune")
	}
}
