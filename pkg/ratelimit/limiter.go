package ratelimit

import (
	"sync"
	"time"
)

// Config is an immutable rate limiting policy.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Named presets. Values are part of the HTTP contract with callers.
var (
	StrictLimit = Config{MaxRequests: 3, Window: time.Minute}
	AuthLimit   = Config{MaxRequests: 5, Window: time.Minute}
	EmailLimit  = Config{MaxRequests: 10, Window: time.Minute}
	APILimit    = Config{MaxRequests: 100, Window: time.Minute}
)

// Entry is the per-identifier window state.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Result is the outcome of a single admission check. A denied request is a
// normal control-flow result, never an error.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Store holds per-identifier entries. The in-memory implementation is the
// default; the interface exists so a distributed backing store can be
// swapped in without changing the check algorithm.
type Store interface {
	Get(identifier string) (Entry, bool)
	Set(identifier string, entry Entry)
	Delete(identifier string)
	// Sweep removes entries whose window has ended, returning the number
	// of entries deleted.
	Sweep(now time.Time) int
}

// MemoryStore is a process-local Store backed by a map.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(identifier string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[identifier]
	return entry, ok
}

func (s *MemoryStore) Set(identifier string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identifier] = entry
}

func (s *MemoryStore) Delete(identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, identifier)
}

func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if !entry.ResetAt.After(now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

const sweepInterval = time.Minute

// Limiter performs fixed-window admission checks against a Store.
type Limiter struct {
	store     Store
	mu        sync.Mutex
	sweepOnce sync.Once
	now       func() time.Time
}

// NewLimiter creates a limiter over the given store. A nil store gets a
// fresh in-memory one.
func NewLimiter(store Store) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{
		store: store,
		now:   time.Now,
	}
}

// Check records one request for the identifier under the given policy and
// reports whether it is admitted. The check never fails for well-formed
// input; a misconfigured policy (MaxRequests <= 0) simply denies everything.
func (l *Limiter) Check(identifier string, cfg Config) Result {
	l.startSweep()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	entry, ok := l.store.Get(identifier)
	if !ok || !entry.ResetAt.After(now) {
		// First request from this identifier, or a stale window: open a
		// fresh window regardless of sweep timing.
		entry = Entry{Count: 1, ResetAt: now.Add(cfg.Window)}
		l.store.Set(identifier, entry)
		return Result{
			Allowed:   cfg.MaxRequests > 0,
			Remaining: max(cfg.MaxRequests-1, 0),
			ResetAt:   entry.ResetAt,
		}
	}

	if entry.Count >= cfg.MaxRequests {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    entry.ResetAt,
			RetryAfter: entry.ResetAt.Sub(now),
		}
	}

	entry.Count++
	l.store.Set(identifier, entry)
	return Result{
		Allowed:   true,
		Remaining: cfg.MaxRequests - entry.Count,
		ResetAt:   entry.ResetAt,
	}
}

// startSweep launches the periodic expiry sweep once per limiter. The sweep
// only deletes entries whose window has ended; the check path treats stale
// entries as expired on its own, so sweep timing never changes admission
// decisions.
func (l *Limiter) startSweep() {
	l.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				l.store.Sweep(l.now())
			}
		}()
	})
}

// defaultLimiter backs the package-level Check, shared process-wide.
var defaultLimiter = NewLimiter(nil)

// Check performs an admission check against the shared process-wide limiter.
func Check(identifier string, cfg Config) Result {
	return defaultLimiter.Check(identifier, cfg)
}
