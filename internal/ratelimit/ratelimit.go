// Package ratelimit implements a fixed-window admission counter partitioned
// by logical key. The limiter is advisory and process-local; exact fairness
// across replicas is not guaranteed.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Window is the mutable state for one key. It is replaced, never merged,
// when the window expires.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Store holds per-key windows. Implementations do not need to be safe for
// concurrent use; the Limiter serializes access. A replicated deployment can
// swap in a shared counter service behind this interface.
type Store interface {
	Get(key string) (Window, bool)
	Set(key string, w Window)
	Delete(key string)
	Range(fn func(key string, w Window) bool)
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	windows map[string]Window
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

func (s *MemoryStore) Get(key string) (Window, bool) {
	w, ok := s.windows[key]
	return w, ok
}

func (s *MemoryStore) Set(key string, w Window) { s.windows[key] = w }

func (s *MemoryStore) Delete(key string) { delete(s.windows, key) }

func (s *MemoryStore) Range(fn func(key string, w Window) bool) {
	for k, w := range s.windows {
		if !fn(k, w) {
			return
		}
	}
}

// Limiter tracks call counts per key over fixed windows. The check is an
// atomic read-modify-write per key, so concurrent callers can never admit
// more than limit requests in one window.
type Limiter struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// NewLimiter creates a Limiter over the given store. A nil store gets a
// fresh MemoryStore.
func NewLimiter(store Store) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{store: store, now: time.Now}
}

// Key composes the partition key for one actor and action. The same logical
// action by the same actor always maps to the same key; no state crosses
// tenant lines.
func Key(tenant, user, action string) string {
	return strings.Join([]string{tenant, user, action}, ":")
}

// Check admits or rejects one call under the given limit and window. The
// first use of a key, or any use past the stored reset time, starts a fresh
// window with count 1.
func (l *Limiter) Check(key string, limit int, window time.Duration) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	current, ok := l.store.Get(key)
	if !ok || now.After(current.ResetAt) {
		resetAt := now.Add(window)
		l.store.Set(key, Window{Count: 1, ResetAt: resetAt})
		return Decision{Allowed: true, Remaining: limit - 1, ResetAt: resetAt}
	}

	if current.Count >= limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: current.ResetAt}
	}

	current.Count++
	l.store.Set(key, current)
	return Decision{Allowed: true, Remaining: limit - current.Count, ResetAt: current.ResetAt}
}

// Sweep drops windows that expired before now.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var expired []string
	l.store.Range(func(key string, w Window) bool {
		if now.After(w.ResetAt) {
			expired = append(expired, key)
		}
		return true
	})
	for _, key := range expired {
		l.store.Delete(key)
	}
}

// Janitor sweeps expired windows until the context is cancelled.
func (l *Limiter) Janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
