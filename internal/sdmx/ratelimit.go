package sdmx

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time so the limiter can run on a manual clock in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Limiter serializes admission of outbound calls so that no two admissions
// complete less than MinInterval apart, no matter how many callers ask
// concurrently. The remote service blocks a client IP after a few dozen
// closely spaced requests, so pacing has to hold process-wide: every
// executor attempt, retries included, goes through Admit.
//
// Each Limiter owns its own timestamp; construct one per executor rather
// than sharing ambient state.
type Limiter struct {
	interval time.Duration
	clock    Clock

	mu   sync.Mutex
	last time.Time
}

// NewLimiter creates a limiter on the system clock.
func NewLimiter(interval time.Duration) *Limiter {
	return NewLimiterWithClock(interval, systemClock{})
}

// NewLimiterWithClock creates a limiter on the given clock.
func NewLimiterWithClock(interval time.Duration, clock Clock) *Limiter {
	return &Limiter{interval: interval, clock: clock}
}

// Admit blocks until this call's turn comes and the minimum interval since
// the previous admission has elapsed, then returns the admission timestamp.
// Admissions are serialized under one lock held across the pacing sleep, so
// for any two admissions that complete, their timestamps differ by at least
// the interval.
//
// A cancelled context fails fast before joining the queue; a caller already
// waiting finishes its pacing sleep (attempts are short and bounded, so
// there is no caller-driven abort mid-admission).
func (l *Limiter) Admit(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if !l.last.IsZero() {
		if wait := l.interval - now.Sub(l.last); wait > 0 {
			l.clock.Sleep(wait)
			now = l.clock.Now()
		}
	}
	l.last = now
	return now, nil
}

// LastAdmitted returns the timestamp of the most recent admission.
func (l *Limiter) LastAdmitted() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
