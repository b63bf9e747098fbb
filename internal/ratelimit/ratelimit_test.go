package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestFixedWindowScenario(t *testing.T) {
	l := NewLimiter(nil)
	key := Key("tenant", "alice", "triage")
	const limit = 2
	window := 60 * time.Second

	d1 := l.Check(key, limit, window)
	if !d1.Allowed || d1.Remaining != 1 {
		t.Fatalf("call 1: got %+v", d1)
	}
	d2 := l.Check(key, limit, window)
	if !d2.Allowed || d2.Remaining != 0 {
		t.Fatalf("call 2: got %+v", d2)
	}
	d3 := l.Check(key, limit, window)
	if d3.Allowed || d3.Remaining != 0 {
		t.Fatalf("call 3: got %+v", d3)
	}
	if !d3.ResetAt.Equal(d1.ResetAt) {
		t.Fatalf("rejection must report the active window's reset, got %v want %v", d3.ResetAt, d1.ResetAt)
	}
}

func TestWindowExpiryResetsCount(t *testing.T) {
	now := time.Now()
	l := NewLimiter(nil)
	l.now = func() time.Time { return now }
	key := Key("tenant", "alice", "triage")

	for i := 0; i < 3; i++ {
		l.Check(key, 2, time.Minute)
	}

	now = now.Add(time.Minute + time.Second)
	d := l.Check(key, 2, time.Minute)
	if !d.Allowed || d.Remaining != 1 {
		t.Fatalf("expected fresh window after expiry, got %+v", d)
	}
	if !d.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected reset: %v", d.ResetAt)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(nil)
	if d := l.Check(Key("t1", "alice", "triage"), 1, time.Minute); !d.Allowed {
		t.Fatalf("got %+v", d)
	}
	if d := l.Check(Key("t1", "alice", "triage"), 1, time.Minute); d.Allowed {
		t.Fatal("second call on the same key should be rejected")
	}
	// Same user, different action; same action, different tenant.
	if d := l.Check(Key("t1", "alice", "intake.create"), 1, time.Minute); !d.Allowed {
		t.Fatal("another action must not be starved")
	}
	if d := l.Check(Key("t2", "alice", "triage"), 1, time.Minute); !d.Allowed {
		t.Fatal("another tenant must not be starved")
	}
}

func TestConcurrentAdmissionNeverExceedsLimit(t *testing.T) {
	l := NewLimiter(nil)
	key := Key("tenant", "bob", "intake.create")
	const (
		limit   = 10
		callers = 50
	)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(key, limit, time.Minute).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Fatalf("admitted %d calls, want exactly %d", allowed, limit)
	}
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore()
	l := NewLimiter(store)
	l.now = func() time.Time { return now }

	l.Check("a", 1, time.Second)
	l.Check("b", 1, time.Hour)

	now = now.Add(2 * time.Second)
	l.Sweep()

	if _, ok := store.Get("a"); ok {
		t.Fatal("expired window should be gone")
	}
	if _, ok := store.Get("b"); !ok {
		t.Fatal("live window should survive the sweep")
	}
}
