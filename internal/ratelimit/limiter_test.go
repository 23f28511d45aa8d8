package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func newTestLimiter(quota int, window time.Duration) (*Limiter, *time.Time) {
	l := New(quota, window)
	now := time.Date(2025, 8, 12, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now
	return l, &now
}

func TestAllowExactlyQuotaPerWindow(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("client") {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if l.Allow("client") {
		t.Fatalf("request beyond quota should be rejected")
	}
	// Rejection must not mutate the window counter.
	if l.Allow("client") {
		t.Fatalf("repeated over-quota request should stay rejected")
	}
}

func TestWindowReset(t *testing.T) {
	l, now := newTestLimiter(2, time.Minute)

	if !l.Allow("client") || !l.Allow("client") {
		t.Fatalf("first two requests should be admitted")
	}
	if l.Allow("client") {
		t.Fatalf("third request in window should be rejected")
	}

	*now = now.Add(61 * time.Second)
	if !l.Allow("client") {
		t.Fatalf("request after window elapsed should start a fresh window")
	}
	if !l.Allow("client") {
		t.Fatalf("fresh window should admit up to quota again")
	}
	if l.Allow("client") {
		t.Fatalf("fresh window quota should still be enforced")
	}
}

func TestKeysIsolated(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if !l.Allow("a") {
		t.Fatalf("first request for a should be admitted")
	}
	if !l.Allow("b") {
		t.Fatalf("b has its own window")
	}
	if l.Allow("a") {
		t.Fatalf("a is over quota")
	}
}

func TestConcurrentSameKeyNeverExceedsQuota(t *testing.T) {
	l := New(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Fatalf("expected exactly 50 admissions, got %d", admitted)
	}
}

func TestSweepEvictsExpiredKeys(t *testing.T) {
	l, now := newTestLimiter(5, time.Minute)

	l.Allow("stale")
	*now = now.Add(sweepEvery + time.Minute)
	l.Allow("fresh")

	l.mu.Lock()
	_, staleExists := l.keys["stale"]
	l.mu.Unlock()
	if staleExists {
		t.Fatalf("expired key should have been swept")
	}
}
