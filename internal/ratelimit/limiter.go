package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding-window counter keyed by caller (here,
// client IP). Login is the only throttled surface, so state does not need
// to survive restarts.
type Limiter struct {
	window time.Duration
	max    int

	mu      sync.Mutex
	buckets map[string][]time.Time
}

func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		window:  window,
		max:     max,
		buckets: map[string][]time.Time{},
	}
}

// Allow records an attempt for key and reports whether it is within the
// window budget.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.buckets[key][:0]
	for _, t := range l.buckets[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.buckets[key] = kept
		return false
	}
	l.buckets[key] = append(kept, now)
	return true
}

// RetryAfter returns how long until the oldest attempt for key leaves the
// window, rounded up to whole seconds.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.buckets[key]
	if len(b) == 0 {
		return 0
	}
	d := time.Until(b[0].Add(l.window))
	if d < 0 {
		return 0
	}
	return d.Round(time.Second)
}
