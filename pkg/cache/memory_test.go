package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	if err := mc.Set(ctx, "k", `{"a":1}`, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := mc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != `{"a":1}` {
		t.Fatalf("got %q", v)
	}

	if _, err := mc.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want ErrCacheMiss after expiry, got %v", err)
	}
	ok, err := mc.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("expired key still reported as existing")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	mustSet := func(k, v string) {
		t.Helper()
		if err := mc.Set(ctx, k, v, time.Minute); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	mustSet("a", "1")
	mustSet("b", "2")
	if _, err := mc.Get(ctx, "a"); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	mustSet("c", "3")

	if _, err := mc.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("b should have been evicted, got %v", err)
	}
	for _, k := range []string{"a", "c"} {
		if _, err := mc.Get(ctx, k); err != nil {
			t.Fatalf("%s evicted unexpectedly: %v", k, err)
		}
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock", time.Minute)
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if ok {
		t.Fatal("lock acquired twice")
	}

	if err := mc.Unlock(ctx, "lock"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	ok, err = mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock after Unlock: ok=%v err=%v", ok, err)
	}
}

func TestMemoryCacheLockExpires(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	if ok, _ := mc.TryLock(ctx, "lock", 10*time.Millisecond); !ok {
		t.Fatal("first TryLock failed")
	}
	time.Sleep(30 * time.Millisecond)
	if ok, _ := mc.TryLock(ctx, "lock", time.Minute); !ok {
		t.Fatal("expired lock not reacquirable")
	}
}

func TestKey(t *testing.T) {
	if got := Key("feed:price", "^spx", "^GSPC"); got != "feed:price:^spx:^GSPC" {
		t.Fatalf("got %q", got)
	}
	if got := Key("snapshot:overview"); got != "snapshot:overview" {
		t.Fatalf("got %q", got)
	}
}
