package sdmx

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

// manualClock only advances when the limiter sleeps, so admission
// timestamps are exact regardless of goroutine scheduling.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_ConcurrentAdmissionsAreSpaced(t *testing.T) {
	const n = 8
	interval := 1500 * time.Millisecond

	clock := &manualClock{now: time.Unix(0, 0)}
	limiter := NewLimiterWithClock(interval, clock)

	var mu sync.Mutex
	var stamps []time.Time
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at, err := limiter.Admit(context.Background())
			if err != nil {
				t.Errorf("Admit failed: %v", err)
				return
			}
			mu.Lock()
			stamps = append(stamps, at)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(stamps) != n {
		t.Fatalf("expected %d admissions, got %d", n, len(stamps))
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < interval {
			t.Errorf("admissions %d and %d only %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestLimiter_FirstAdmissionIsImmediate(t *testing.T) {
	clock := &manualClock{now: time.Unix(100, 0)}
	limiter := NewLimiterWithClock(time.Second, clock)

	at, err := limiter.Admit(context.Background())
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if !at.Equal(time.Unix(100, 0)) {
		t.Errorf("first admission should not wait, got timestamp %v", at)
	}
}

func TestLimiter_ElapsedIntervalSkipsWait(t *testing.T) {
	clock := &manualClock{now: time.Unix(0, 0)}
	limiter := NewLimiterWithClock(time.Second, clock)

	if _, err := limiter.Admit(context.Background()); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	// Simulate idle time longer than the interval.
	clock.Sleep(5 * time.Second)

	at, err := limiter.Admit(context.Background())
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if !at.Equal(time.Unix(5, 0)) {
		t.Errorf("admission after idle period should be immediate, got %v", at)
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	limiter := NewLimiter(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limiter.Admit(ctx); err == nil {
		t.Fatal("expected cancelled context to fail admission")
	}
}

func TestLimiter_RealClockSmoke(t *testing.T) {
	interval := 20 * time.Millisecond
	limiter := NewLimiter(interval)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := limiter.Admit(context.Background()); err != nil {
			t.Fatalf("Admit failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Errorf("3 admissions finished in %v, want >= %v", elapsed, 2*interval)
	}
}
