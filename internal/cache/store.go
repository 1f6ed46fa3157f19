// Package cache keeps fetched data keyed by string with per-entry
// staleness. Concurrent fetches of one key share a single loader call.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	data       any
	fetchedAt  time.Time
	staleAfter time.Duration
	stale      bool
	// gen is the key's generation when the load that produced data started
	gen uint64
}

func (e *entry) fresh(now time.Time) bool {
	return !e.stale && now.Sub(e.fetchedAt) < e.staleAfter
}

// Store is safe for concurrent use
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	gens    map[string]uint64
	// loads counts running loaders per key, so prefix invalidation can
	// reach keys that have no entry yet
	loads map[string]int
	group singleflight.Group
	now   func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
		loads:   make(map[string]int),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loader produces the value for a key
type Loader[T any] func(ctx context.Context) (T, error)

// Fetch returns the cached value for key while it is fresh, otherwise runs
// load. Callers arriving while a load is running wait for it instead of
// starting another. A failed load leaves the previous entry untouched.
//
// Invalidating a key lets the next Fetch start a new load even while an
// older one is still running. If the older load finishes last its result is
// dropped and its callers get the newer entry instead.
func Fetch[T any](ctx context.Context, s *Store, key string, staleAfter time.Duration, load Loader[T]) (T, error) {
	if v, ok := s.freshValue(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		gen := s.beginLoad(key)
		defer s.endLoad(key)

		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if cur, ok := s.store(key, data, staleAfter, gen).(T); ok {
			return cur, nil
		}
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Peek returns the cached value for key without loading. fresh is false
// when the entry is past its stale window or was invalidated.
func Peek[T any](s *Store, key string) (value T, fresh bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found {
		return value, false, false
	}
	t, isT := e.data.(T)
	if !isT {
		return value, false, false
	}
	return t, e.fresh(s.now()), true
}

// Set stores value as freshly fetched
func (s *Store) Set(key string, value any, staleAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{data: value, fetchedAt: s.now(), staleAfter: staleAfter, gen: s.gens[key]}
}

// SetStale stores value but marks it stale so the next Fetch reloads
func (s *Store) SetStale(key string, value any, staleAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	s.entries[key] = &entry{data: value, fetchedAt: s.now(), staleAfter: staleAfter, stale: true, gen: s.gens[key]}
	s.group.Forget(key)
}

// Invalidate marks key stale. The data stays available to Peek. A load
// already running for key still stores its result, but stale.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked(key)
}

// InvalidatePrefix invalidates every key starting with prefix, including
// keys whose first load is still running
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			s.invalidateLocked(key)
		}
	}
	for key := range s.loads {
		if _, cached := s.entries[key]; !cached && strings.HasPrefix(key, prefix) {
			s.invalidateLocked(key)
		}
	}
}

func (s *Store) invalidateLocked(key string) {
	s.gens[key]++
	if e, ok := s.entries[key]; ok {
		e.stale = true
	}
	s.group.Forget(key)
}

// Remove evicts key
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	delete(s.entries, key)
	s.group.Forget(key)
}

// Len returns the number of cached keys
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) freshValue(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.fresh(s.now()) {
		return nil, false
	}
	return e.data, true
}

// beginLoad registers a running loader for key and returns its generation
func (s *Store) beginLoad(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[key]++
	return s.gens[key]
}

func (s *Store) endLoad(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loads[key]--; s.loads[key] <= 0 {
		delete(s.loads, key)
	}
}

// store saves a value loaded at generation gen and returns what the key
// holds afterwards. If key was invalidated while loading the value is kept
// for display but marked stale. A value older than the stored one is dropped.
func (s *Store) store(key string, data any, staleAfter time.Duration, gen uint64) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.gen > gen {
		return e.data
	}
	s.entries[key] = &entry{
		data:       data,
		fetchedAt:  s.now(),
		staleAfter: staleAfter,
		stale:      s.gens[key] != gen,
		gen:        gen,
	}
	return data
}
