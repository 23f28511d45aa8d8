package ratelimit

import (
	"sync"
	"time"
)

// Package ratelimit implements per-key sliding-window admission control.
// Single-process, in-memory scope: horizontal scaling needs a shared store.

// record tracks one client key inside its current window.
type record struct {
	count       int
	windowStart time.Time
}

// Limiter admits up to quota requests per key within each window.
type Limiter struct {
	mu     sync.Mutex
	quota  int
	window time.Duration
	keys   map[string]*record
	now    func() time.Time

	lastSweep time.Time
}

// sweepEvery bounds how often expired keys are evicted.
const sweepEvery = 10 * time.Minute

// New builds a limiter with the given per-window quota and window width.
func New(quota int, window time.Duration) *Limiter {
	return &Limiter{
		quota:  quota,
		window: window,
		keys:   make(map[string]*record),
		now:    time.Now,
	}
}

// Allow reports whether a request from key is admitted. The check and the
// counter update are atomic with respect to concurrent requests on the same
// key. A rejected request does not mutate the window.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeSweep(now)

	rec, ok := l.keys[key]
	if !ok {
		l.keys[key] = &record{count: 1, windowStart: now}
		return true
	}

	if now.Sub(rec.windowStart) > l.window {
		rec.count = 1
		rec.windowStart = now
		return true
	}

	if rec.count >= l.quota {
		return false
	}

	rec.count++
	return true
}

// maybeSweep evicts records whose window has long elapsed so the key map
// does not grow without bound. Caller holds l.mu.
func (l *Limiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	for key, rec := range l.keys {
		if now.Sub(rec.windowStart) > l.window {
			delete(l.keys, key)
		}
	}
	l.lastSweep = now
}
