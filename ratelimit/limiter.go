// Package ratelimit provides fixed-window request counting keyed by client
// identity. Each protected action owns its own Limiter instance, so login
// throttling never interferes with signup throttling.
//
// State is process-local. Horizontally scaled deployments without a shared
// store will under-enforce limits proportionally to the instance count.
package ratelimit

import (
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Result reports a single rate limit decision
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time // end of the current window
}

// record tracks one key's open window. count never exceeds the limit;
// rejected attempts do not increment past it.
type record struct {
	windowStart time.Time
	count       int
}

// Limiter counts requests per key within a fixed window
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	records map[string]*record
}

// New creates a Limiter allowing limit requests per window for each key
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		records: make(map[string]*record),
	}
}

// Check records an attempt for key and reports whether it is allowed.
// The first call for a key, or the first call after its window elapses,
// opens a fresh window with count=1. Concurrent calls for the same key are
// serialized, so increments are never lost.
func (l *Limiter) Check(key string) Result {
	now := NowTimeFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.evictExpired(now)

	rec, ok := l.records[key]
	if !ok || now.Sub(rec.windowStart) >= l.window {
		rec = &record{windowStart: now, count: 1}
		l.records[key] = rec
		return l.result(true, rec)
	}

	if rec.count >= l.limit {
		return l.result(false, rec)
	}

	rec.count++
	return l.result(true, rec)
}

func (l *Limiter) result(allowed bool, rec *record) Result {
	remaining := l.limit - rec.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     rec.windowStart.Add(l.window),
	}
}

// evictExpired opportunistically drops closed windows so the map does not
// grow without bound under churning keys. Called with the lock held.
func (l *Limiter) evictExpired(now time.Time) {
	if len(l.records) < evictThreshold {
		return
	}
	for key, rec := range l.records {
		if now.Sub(rec.windowStart) >= l.window {
			delete(l.records, key)
		}
	}
}

// evictThreshold bounds how small the map can be before a sweep is worth it
const evictThreshold = 1024
