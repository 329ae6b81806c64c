// Package ratelimit provides an in-memory fixed-window request counter
// keyed by (identifier, endpoint class). The window scheme deliberately
// permits a brief burst at window boundaries in exchange for O(1) space
// and time per check and no external dependency.
package ratelimit

import (
	"sync"
	"time"
)

// Record is the per-key counter state. At most one active record exists per
// key; Count only grows within a window and restarts at 1 when a new window
// opens.
type Record struct {
	Count         int
	WindowResetAt time.Time
}

// Store holds rate-limit records by key. The in-memory implementation below
// is the default; a shared external store can be swapped in without
// touching the pipeline.
type Store interface {
	Get(key string) (Record, bool)
	Set(key string, rec Record)
	// Evict removes records whose window ended before cutoff and reports
	// how many were dropped.
	Evict(cutoff time.Time) int
}

// MemoryStore is a mutex-guarded map store. Process-lifetime state only.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get returns the record for key, if present.
func (s *MemoryStore) Get(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Set stores rec under key, replacing any prior record.
func (s *MemoryStore) Set(key string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec
}

// Evict drops expired records. Stale keys otherwise accumulate for the
// process lifetime, so the hosting environment should call this
// periodically via Limiter.EvictExpired.
func (s *MemoryStore) Evict(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, rec := range s.records {
		if rec.WindowResetAt.Before(cutoff) {
			delete(s.records, key)
			n++
		}
	}
	return n
}

// Len reports the number of live records (expired ones included until evicted).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Decision is the immutable outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds until the window resets, at least 1.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.ResetAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Limiter applies fixed-window counting on top of a Store. The check is a
// read-modify-write, so the Limiter serialises it under its own lock; a
// store shared across processes must provide its own atomicity instead.
type Limiter struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// New creates a Limiter over store. A nil store gets a fresh MemoryStore.
func New(store Store) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{store: store, now: time.Now}
}

// SetClock overrides the limiter's time source. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Check counts one request against the (identifier, class) key and decides
// whether it fits within maxRequests per window. The counted request is
// always recorded, allowed or not.
func (l *Limiter) Check(identifier, class string, maxRequests int, window time.Duration) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := identifier + ":" + class

	rec, ok := l.store.Get(key)
	if !ok || now.After(rec.WindowResetAt) {
		rec = Record{Count: 0, WindowResetAt: now.Add(window)}
	}
	rec.Count++
	l.store.Set(key, rec)

	remaining := maxRequests - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   rec.Count <= maxRequests,
		Limit:     maxRequests,
		Remaining: remaining,
		ResetAt:   rec.WindowResetAt,
	}
}

// EvictExpired sweeps records whose window is already over. Intended to be
// driven on a timer by the hosting process.
func (l *Limiter) EvictExpired() int {
	l.mu.Lock()
	now := l.now()
	l.mu.Unlock()
	return l.store.Evict(now)
}
