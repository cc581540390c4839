// Package ratelimit implements sliding-window call admission per actor.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most maxCalls per actor within the trailing window.
// State is in-memory and per-process; it resets on restart.
type Limiter struct {
	maxCalls int
	window   time.Duration

	mu    sync.Mutex
	calls map[int64][]time.Time
	now   func() time.Time
}

// New creates a Limiter.
func New(maxCalls int, window time.Duration) *Limiter {
	return &Limiter{
		maxCalls: maxCalls,
		window:   window,
		calls:    make(map[int64][]time.Time),
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow reports whether the actor may make a call now, recording the call
// timestamp when admitted. Safe for concurrent use.
func (l *Limiter) Allow(actorID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	threshold := now.Add(-l.window)

	recent := l.calls[actorID][:0]
	for _, t := range l.calls[actorID] {
		if t.After(threshold) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.maxCalls {
		l.calls[actorID] = recent
		return false
	}
	l.calls[actorID] = append(recent, now)
	return true
}
